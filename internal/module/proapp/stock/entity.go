package stock

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WireTimeLayout is the instant format of the catalog API.
const WireTimeLayout = "2006-01-02T15:04:05Z"

// Stock is one priced availability window of an offer, as persisted by the
// catalog API.
type Stock struct {
	ID                                string          `json:"id"`
	Price                             decimal.Decimal `json:"price"`
	Quantity                          *int64          `json:"quantity"`
	BookingsQuantity                  int64           `json:"bookingsQuantity"`
	RemainingQuantity                 *int64          `json:"remainingQuantity"`
	BeginningDatetime                 *time.Time      `json:"beginningDatetime"`
	BookingLimitDatetime              *time.Time      `json:"bookingLimitDatetime"`
	ActivationCodes                   []string        `json:"activationCodes"`
	ActivationCodesExpirationDatetime *time.Time      `json:"activationCodesExpirationDatetime"`
	IsEventDeletable                  bool            `json:"isEventDeletable"`
	IsEventEditable                   bool            `json:"isEventEditable"`
}

// HasActivationCodes reports whether the stock was persisted with codes,
// which locks its quantity for good.
func (s Stock) HasActivationCodes() bool {
	return len(s.ActivationCodes) > 0
}

// Payload is the wire form of one row in a batch submission. It is a tagged
// union: thing offers and event offers each have a fixed field set.
type Payload interface {
	stockPayload()
}

type ThingPayload struct {
	ID                                *string      `json:"id,omitempty"`
	Price                             string       `json:"price"`
	Quantity                          WireQuantity `json:"quantity"`
	BookingLimitDatetime              Instant      `json:"bookingLimitDatetime"`
	ActivationCodes                   []string     `json:"activationCodes,omitempty"`
	ActivationCodesExpirationDatetime Instant      `json:"activationCodesExpirationDatetime,omitzero"`
}

type EventPayload struct {
	ID                   *string      `json:"id,omitempty"`
	Price                string       `json:"price"`
	Quantity             WireQuantity `json:"quantity"`
	BeginningDatetime    Instant      `json:"beginningDatetime"`
	BookingLimitDatetime Instant      `json:"bookingLimitDatetime"`
}

func (ThingPayload) stockPayload() {}
func (EventPayload) stockPayload() {}

// Instant marshals a UTC instant in the catalog wire format, or null.
type Instant struct {
	t   *time.Time
	set bool
}

func NewInstant(t *time.Time) Instant {
	return Instant{t: t, set: true}
}

func (i Instant) Time() *time.Time {
	return i.t
}

func (i Instant) IsZero() bool {
	return !i.set
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if i.t == nil {
		return []byte("null"), nil
	}
	return json.Marshal(i.t.UTC().Format(WireTimeLayout))
}

// WireQuantity serializes a quantity the way the catalog API expects it:
// manual quantities as numeric strings, activation-code counts as bare
// numbers, unlimited as null.
type WireQuantity struct {
	count     *int64
	fromCodes bool
}

func ManualQuantity(count *int64) WireQuantity {
	return WireQuantity{count: count}
}

func CodeQuantity(count int64) WireQuantity {
	return WireQuantity{count: &count, fromCodes: true}
}

func (q WireQuantity) Count() *int64 {
	return q.count
}

func (q WireQuantity) MarshalJSON() ([]byte, error) {
	if q.count == nil {
		return []byte("null"), nil
	}
	if q.fromCodes {
		return []byte(strconv.FormatInt(*q.count, 10)), nil
	}
	return json.Marshal(strconv.FormatInt(*q.count, 10))
}

// FieldValidationError is the field-keyed error map returned by the catalog
// API when a batch submission is refused.
type FieldValidationError struct {
	Fields map[string]string
}

func (e *FieldValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	return strings.Join(parts, ", ")
}

// FormatPrice renders a price for the wire, trimming a useless exponent so
// 15.00 travels as "15".
func FormatPrice(p decimal.Decimal) string {
	return p.String()
}
