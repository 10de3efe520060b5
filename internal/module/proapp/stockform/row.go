package stockform

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/culturepass/cp-stock/internal/module/proapp/offer"
	"github.com/culturepass/cp-stock/internal/module/proapp/stock"
	"github.com/culturepass/cp-stock/internal/pkg/timeutil"
	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

// educationalPriceCap is blocking for educational offers and advisory for
// everything else.
var educationalPriceCap = decimal.NewFromInt(300)

// RowValues holds the in-progress field inputs of one row. Everything is a
// string because the operator types into text and date widgets.
type RowValues struct {
	Price            string
	Quantity         string
	BeginningDate    string
	BeginningHour    string
	BookingLimitDate string
}

type stagedCodes struct {
	preview       ActivationCodePreview
	priorQuantity string
}

type appliedCodes struct {
	codes          []string
	expirationDate string
}

// Row is the editable projection of one stock: a persisted baseline (or a
// blank, client-only row) merged with the operator's edits.
type Row struct {
	id             string
	departmentCode string
	baseline       *stock.Stock
	hydrated       RowValues
	values         RowValues
	fieldErrors    map[Field]string
	staged         *stagedCodes
	applied        *appliedCodes
}

// NewRowFromStock hydrates a row from a persisted stock, rendering its
// instants in the venue's timezone.
func NewRowFromStock(s stock.Stock, departmentCode string) *Row {
	values := RowValues{
		Price: stock.FormatPrice(s.Price),
	}
	if s.Quantity != nil {
		values.Quantity = strconv.FormatInt(*s.Quantity, 10)
	}
	if s.BeginningDatetime != nil {
		values.BeginningDate = timeutil.LocalDay(*s.BeginningDatetime, departmentCode)
		values.BeginningHour = timeutil.LocalHour(*s.BeginningDatetime, departmentCode)
	}
	if s.BookingLimitDatetime != nil {
		values.BookingLimitDate = timeutil.LocalDay(*s.BookingLimitDatetime, departmentCode)
	}

	return &Row{
		id:             s.ID,
		departmentCode: departmentCode,
		baseline:       &s,
		hydrated:       values,
		values:         values,
		fieldErrors:    map[Field]string{},
	}
}

// NewBlankRow creates an unsaved row identified by a client-only token.
func NewBlankRow(departmentCode string) *Row {
	return &Row{
		id:             uuid.NewString(),
		departmentCode: departmentCode,
		fieldErrors:    map[Field]string{},
	}
}

func (r *Row) ID() string {
	return r.id
}

func (r *Row) IsNew() bool {
	return r.baseline == nil
}

func (r *Row) Values() RowValues {
	return r.values
}

func (r *Row) BookingsQuantity() int64 {
	if r.baseline == nil {
		return 0
	}
	return r.baseline.BookingsQuantity
}

// BeginningInstant is the persisted beginning, used to order event rows.
func (r *Row) BeginningInstant() *time.Time {
	if r.baseline == nil {
		return nil
	}
	return r.baseline.BeginningDatetime
}

// Dirty reports whether the row differs from its hydrated baseline and must
// take part in the next submission. A field edited and then reverted to its
// hydrated value leaves the row pristine.
func (r *Row) Dirty() bool {
	return r.values != r.hydrated || r.applied != nil
}

// QuantityLocked reports whether the quantity input is driven by activation
// codes instead of the operator.
func (r *Row) QuantityLocked() bool {
	if r.staged != nil || r.applied != nil {
		return true
	}
	return r.baseline != nil && r.baseline.HasActivationCodes()
}

// SetField records an operator edit and clears any previous error on that
// field. Moving the beginning date before the current booking limit snaps
// the booking limit down to the new beginning date.
func (r *Row) SetField(o offer.Offer, field Field, value string) error {
	if !r.Editability(o)[field] {
		return errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgFieldNotEditable)
	}

	switch field {
	case FieldPrice:
		r.values.Price = value
	case FieldQuantity:
		r.values.Quantity = value
	case FieldBeginningDate:
		r.values.BeginningDate = value
		if value != "" && r.values.BookingLimitDate > value {
			r.values.BookingLimitDate = value
			delete(r.fieldErrors, FieldBookingLimitDate)
		}
	case FieldBeginningHour:
		r.values.BeginningHour = value
	case FieldBookingLimitDate:
		r.values.BookingLimitDate = value
	default:
		return errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgFieldNotEditable)
	}

	delete(r.fieldErrors, field)

	return nil
}

// StageActivationCodes installs an uploaded preview: the quantity shows the
// code count and locks, but nothing is committed until confirmation.
func (r *Row) StageActivationCodes(o offer.Offer, preview ActivationCodePreview) error {
	if !o.IsDigital || o.IsEvent {
		return errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgCodesOnDigitalThingOnly)
	}
	if !r.Editability(o)[FieldQuantity] && r.staged == nil {
		return errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgFieldNotEditable)
	}

	if r.staged == nil {
		r.staged = &stagedCodes{priorQuantity: r.values.Quantity}
	}
	r.staged.preview = preview
	r.values.Quantity = strconv.FormatInt(preview.Count(), 10)

	return nil
}

// ConfirmActivationCodes commits the staged preview. When an expiration day
// is chosen, the booking limit becomes the end of the local day before it,
// which keeps the limit strictly ahead of the expiration.
func (r *Row) ConfirmActivationCodes(expirationDate string) error {
	if r.staged == nil {
		return errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgNoPendingCodes)
	}

	if expirationDate != "" {
		expiration, err := time.Parse(timeutil.DayLayout, expirationDate)
		if err != nil {
			return errors.New(http.StatusBadRequest, status.BAD_REQUEST, "the expiration date is invalid")
		}

		r.values.BookingLimitDate = expiration.AddDate(0, 0, -1).Format(timeutil.DayLayout)
		delete(r.fieldErrors, FieldBookingLimitDate)
	}

	r.applied = &appliedCodes{
		codes:          r.staged.preview.Codes,
		expirationDate: expirationDate,
	}
	delete(r.fieldErrors, FieldQuantity)
	r.staged = nil

	return nil
}

// DiscardActivationCodes drops a staged preview and restores the quantity
// the operator had before the upload.
func (r *Row) DiscardActivationCodes() {
	if r.staged == nil {
		return
	}

	r.values.Quantity = r.staged.priorQuantity
	r.staged = nil
}

func (r *Row) HasStagedActivationCodes() bool {
	return r.staged != nil
}

// ActivationCodeCount counts the codes currently attached to the row,
// whether applied in this visit or already persisted.
func (r *Row) ActivationCodeCount() int {
	if r.applied != nil {
		return len(r.applied.codes)
	}
	if r.baseline != nil {
		return len(r.baseline.ActivationCodes)
	}
	return 0
}

// Editability computes which fields the operator may change, given the
// offer's lifecycle status and provider origin.
func (r *Row) Editability(o offer.Offer) map[Field]bool {
	editable := make(map[Field]bool, len(allFields))

	allLocked := o.IsLockedByStatus() ||
		(o.IsSynchronized() && !o.IsPartiallySynchronized()) ||
		(o.IsEvent && r.baseline != nil && !r.baseline.IsEventEditable)

	for _, f := range allFields {
		editable[f] = !allLocked
	}

	if !allLocked && o.IsPartiallySynchronized() {
		editable[FieldBeginningDate] = false
		editable[FieldBeginningHour] = false
	}

	if r.QuantityLocked() {
		editable[FieldQuantity] = false
	}

	return editable
}

// Deletability reports whether the row may be deleted and, when it may not,
// the operator-facing reason.
func (r *Row) Deletability(o offer.Offer, now time.Time) (bool, string) {
	if r.IsNew() {
		return true, ""
	}
	if o.IsSynchronized() {
		return false, MsgSyncStockNotDeletable
	}
	if o.IsLockedByStatus() {
		return false, MsgLockedOfferNotDeletable
	}
	if o.IsEvent && !r.baseline.IsEventDeletable {
		if r.baseline.BeginningDatetime != nil && now.Sub(*r.baseline.BeginningDatetime) > 48*time.Hour {
			return false, MsgEventOver48hNotDeletable
		}
		return false, MsgPastEventNotDeletable
	}

	return true, ""
}

// RemainingDisplay renders the remaining-quantity cell; invalid input shows
// as empty until the operator fixes it.
func (r *Row) RemainingDisplay() string {
	_, remaining, err := ResolveQuantity(r.values.Quantity, r.BookingsQuantity())
	if err != nil {
		return ""
	}
	return remaining.String()
}

// Validate runs the local checks that must pass before any network call.
func (r *Row) Validate(o offer.Offer) map[Field]string {
	problems := map[Field]string{}

	if r.values.Price == "" {
		problems[FieldPrice] = MsgPriceRequired
	} else if price, err := decimal.NewFromString(r.values.Price); err != nil || price.IsNegative() {
		problems[FieldPrice] = MsgPriceInvalid
	} else if o.IsEducational && price.GreaterThan(educationalPriceCap) {
		problems[FieldPrice] = MsgPriceAboveEducationalCap
	}

	if quantity, _, err := ResolveQuantity(r.values.Quantity, r.BookingsQuantity()); err != nil || (quantity != nil && *quantity < 0) {
		if r.values.Quantity != "" {
			problems[FieldQuantity] = MsgQuantityInvalid
		}
	}

	if o.IsEvent {
		if r.values.BeginningDate == "" {
			problems[FieldBeginningDate] = MsgBeginningDateRequired
		}
		if r.values.BeginningHour == "" {
			problems[FieldBeginningHour] = MsgBeginningHourRequired
		}
		if r.values.BeginningDate != "" && r.values.BookingLimitDate > r.values.BeginningDate {
			problems[FieldBookingLimitDate] = MsgBookingLimitAfterStart
		}
	}

	return problems
}

// Warnings returns the advisory notices that never block submission.
func (r *Row) Warnings(o offer.Offer) []string {
	var warnings []string

	if price, err := decimal.NewFromString(r.values.Price); err == nil {
		if !o.IsEducational && price.GreaterThan(educationalPriceCap) {
			warnings = append(warnings, MsgPriceAboveCapWarning)
		}
	}

	return warnings
}

// SubmissionPayload serializes the row for the batch endpoint, or returns
// nil when the row is unchanged from its baseline and has nothing to submit.
func (r *Row) SubmissionPayload(o offer.Offer) (stock.Payload, error) {
	if !r.Dirty() {
		return nil, nil
	}

	price, err := decimal.NewFromString(r.values.Price)
	if err != nil {
		return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgPriceInvalid)
	}

	var id *string
	if r.baseline != nil {
		id = &r.baseline.ID
	}

	quantity, _, err := ResolveQuantity(r.values.Quantity, r.BookingsQuantity())
	if err != nil {
		return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgQuantityInvalid)
	}

	if o.IsEvent {
		beginning, err := timeutil.ExactUTC(r.values.BeginningDate, r.values.BeginningHour, r.departmentCode)
		if err != nil || beginning == nil {
			return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgBeginningDateRequired)
		}

		bookingLimit, err := timeutil.BookingLimitUTC(r.values.BookingLimitDate, beginning, r.departmentCode)
		if err != nil {
			return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgBookingLimitAfterStart)
		}

		return stock.EventPayload{
			ID:                   id,
			Price:                stock.FormatPrice(price),
			Quantity:             stock.ManualQuantity(quantity),
			BeginningDatetime:    stock.NewInstant(beginning),
			BookingLimitDatetime: stock.NewInstant(bookingLimit),
		}, nil
	}

	bookingLimit, err := timeutil.BookingLimitUTC(r.values.BookingLimitDate, nil, r.departmentCode)
	if err != nil {
		return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgBookingLimitAfterStart)
	}

	payload := stock.ThingPayload{
		ID:                   id,
		Price:                stock.FormatPrice(price),
		Quantity:             stock.ManualQuantity(quantity),
		BookingLimitDatetime: stock.NewInstant(bookingLimit),
	}

	if r.applied != nil {
		payload.ActivationCodes = r.applied.codes
		payload.Quantity = stock.CodeQuantity(int64(len(r.applied.codes)))

		if r.applied.expirationDate != "" {
			expiration, err := timeutil.EndOfLocalDayUTC(r.applied.expirationDate, r.departmentCode)
			if err != nil {
				return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "the expiration date is invalid")
			}
			payload.ActivationCodesExpirationDatetime = stock.NewInstant(expiration)
		} else {
			payload.ActivationCodesExpirationDatetime = stock.NewInstant(nil)
		}
	}

	return payload, nil
}

// ApplyFieldError marks one field invalid with a server-provided message,
// leaving the operator's values untouched.
func (r *Row) ApplyFieldError(field Field, message string) {
	r.fieldErrors[field] = message
}

func (r *Row) FieldErrors() map[Field]string {
	out := make(map[Field]string, len(r.fieldErrors))
	for f, m := range r.fieldErrors {
		out[f] = m
	}
	return out
}

func (r *Row) ClearFieldErrors() {
	r.fieldErrors = map[Field]string{}
}
