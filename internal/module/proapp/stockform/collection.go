package stockform

import (
	"net/http"
	"sort"

	"github.com/culturepass/cp-stock/internal/module/proapp/offer"
	"github.com/culturepass/cp-stock/internal/module/proapp/stock"
	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

// Collection owns the ordered row set of one offer's stock form. Rows are
// addressed by stable identifiers, never by position: persisted rows carry
// their server id, new rows a generated client token.
type Collection struct {
	offer offer.Offer
	rows  []*Row
}

func NewCollection(o offer.Offer) *Collection {
	return &Collection{offer: o}
}

func (c *Collection) Offer() offer.Offer {
	return c.offer
}

// UpdateOffer refreshes the offer snapshot the rules are computed against,
// keeping the rows as they are.
func (c *Collection) UpdateOffer(o offer.Offer) {
	c.offer = o
}

func (c *Collection) Rows() []*Row {
	return c.rows
}

func (c *Collection) Row(rowID string) (*Row, bool) {
	for _, r := range c.rows {
		if r.ID() == rowID {
			return r, true
		}
	}
	return nil, false
}

func sortStocksForDisplay(isEvent bool, stocks []stock.Stock) []stock.Stock {
	sorted := make([]stock.Stock, len(stocks))
	copy(sorted, stocks)

	if isEvent {
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].BeginningDatetime, sorted[j].BeginningDatetime
			if a == nil || b == nil {
				return b == nil && a != nil
			}
			return a.After(*b)
		})
	}

	return sorted
}

// Hydrate replaces the persisted rows from a fresh server read, keeping any
// still-unsaved new rows above them in their prior relative order.
func (c *Collection) Hydrate(stocks []stock.Stock) {
	var kept []*Row
	for _, r := range c.rows {
		if r.IsNew() {
			kept = append(kept, r)
		}
	}

	for _, s := range sortStocksForDisplay(c.offer.IsEvent, stocks) {
		kept = append(kept, NewRowFromStock(s, c.offer.Venue.DepartmentCode))
	}

	c.rows = kept
}

// Reset replaces the entire collection, new rows included. Used after a
// successful submission cycle, when the server response is the whole truth.
func (c *Collection) Reset(stocks []stock.Stock) {
	c.rows = nil
	c.Hydrate(stocks)
}

// InsertNewRow prepends a blank row. Locked or synchronized offers accept no
// insertion at all; on a thing offer that already has its single row the call
// is a no-op and returns no row.
func (c *Collection) InsertNewRow() (*Row, error) {
	if c.offer.IsLockedByStatus() || c.offer.IsSynchronized() {
		return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgCannotAddStock)
	}
	if !c.offer.IsEvent && len(c.rows) > 0 {
		return nil, nil
	}

	row := NewBlankRow(c.offer.Venue.DepartmentCode)
	c.rows = append([]*Row{row}, c.rows...)

	return row, nil
}

// RemoveRow drops a row from the in-memory set. Persisted rows must only be
// removed once the server confirmed their deletion; that ordering is the
// caller's job.
func (c *Collection) RemoveRow(rowID string) (*Row, bool) {
	for i, r := range c.rows {
		if r.ID() == rowID {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			return r, true
		}
	}
	return nil, false
}

// SubmissionEntry pairs a row with its serialized payload for one batch.
type SubmissionEntry struct {
	Row     *Row
	Payload stock.Payload
}

// Validate runs local validation on every row that would take part in the
// next submission, keyed by row id.
func (c *Collection) Validate() map[string]map[Field]string {
	problems := map[string]map[Field]string{}

	for _, r := range c.rows {
		if !r.Dirty() {
			continue
		}
		if rowProblems := r.Validate(c.offer); len(rowProblems) > 0 {
			problems[r.ID()] = rowProblems
		}
	}

	return problems
}

// SubmissionEntries diffs the current rows against their baselines and
// returns only the rows with something to submit. An inserted-then-abandoned
// blank row contributes nothing.
func (c *Collection) SubmissionEntries() ([]SubmissionEntry, error) {
	var entries []SubmissionEntry

	for _, r := range c.rows {
		payload, err := r.SubmissionPayload(c.offer)
		if err != nil {
			return nil, err
		}
		if payload == nil {
			continue
		}
		entries = append(entries, SubmissionEntry{Row: r, Payload: payload})
	}

	return entries, nil
}

// ApplyFieldErrors maps a server-side field error map back onto rows. Each
// error goes to the first submitted row whose local value for that field is
// missing or invalid; when every row looks locally valid the first submitted
// row takes it. The attribution is best effort: the wire protocol does not
// index errors per row. Messages on fields no row exposes are returned for
// form-level display.
func (c *Collection) ApplyFieldErrors(entries []SubmissionEntry, fields map[string]string) []string {
	var formLevel []string

	for wireField, message := range fields {
		field, known := wireFieldMapping[wireField]
		if !known || len(entries) == 0 {
			formLevel = append(formLevel, message)
			continue
		}

		target := entries[0].Row
		for _, entry := range entries {
			if _, invalid := entry.Row.Validate(c.offer)[field]; invalid {
				target = entry.Row
				break
			}
		}

		target.ApplyFieldError(field, message)
	}

	return formLevel
}
