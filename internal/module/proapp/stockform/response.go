package stockform

import "time"

type RowResponse struct {
	ID                       string            `json:"id"`
	IsNew                    bool              `json:"isNew"`
	Price                    string            `json:"price"`
	Quantity                 string            `json:"quantity"`
	BeginningDate            string            `json:"beginningDate,omitempty"`
	BeginningHour            string            `json:"beginningHour,omitempty"`
	BookingLimitDate         string            `json:"bookingLimitDate,omitempty"`
	BookingsQuantity         int64             `json:"bookingsQuantity"`
	RemainingQuantity        string            `json:"remainingQuantity"`
	Editable                 map[string]bool   `json:"editable"`
	Deletable                bool              `json:"deletable"`
	DeletableReason          string            `json:"deletableReason,omitempty"`
	ActivationCodeCount      int               `json:"activationCodeCount"`
	HasStagedActivationCodes bool              `json:"hasStagedActivationCodes"`
	Errors                   map[string]string `json:"errors,omitempty"`
	Warnings                 []string          `json:"warnings,omitempty"`
}

type FormResponse struct {
	OfferID        string        `json:"offerId"`
	IsEvent        bool          `json:"isEvent"`
	IsDigital      bool          `json:"isDigital"`
	CanAddRow      bool          `json:"canAddRow"`
	SubmitDisabled bool          `json:"submitDisabled"`
	FormErrors     []string      `json:"formErrors,omitempty"`
	Rows           []RowResponse `json:"rows"`
}

func buildRowResponse(c *Collection, r *Row, now time.Time) RowResponse {
	o := c.Offer()
	values := r.Values()

	editable := make(map[string]bool)
	for field, ok := range r.Editability(o) {
		editable[string(field)] = ok
	}

	fieldErrors := make(map[string]string)
	for field, message := range r.FieldErrors() {
		fieldErrors[string(field)] = message
	}

	deletable, reason := r.Deletability(o, now)

	return RowResponse{
		ID:                       r.ID(),
		IsNew:                    r.IsNew(),
		Price:                    values.Price,
		Quantity:                 values.Quantity,
		BeginningDate:            values.BeginningDate,
		BeginningHour:            values.BeginningHour,
		BookingLimitDate:         values.BookingLimitDate,
		BookingsQuantity:         r.BookingsQuantity(),
		RemainingQuantity:        r.RemainingDisplay(),
		Editable:                 editable,
		Deletable:                deletable,
		DeletableReason:          reason,
		ActivationCodeCount:      r.ActivationCodeCount(),
		HasStagedActivationCodes: r.HasStagedActivationCodes(),
		Errors:                   fieldErrors,
		Warnings:                 r.Warnings(o),
	}
}

func buildFormResponse(c *Collection, now time.Time, formErrors []string) FormResponse {
	o := c.Offer()

	rows := make([]RowResponse, 0, len(c.Rows()))
	for _, r := range c.Rows() {
		rows = append(rows, buildRowResponse(c, r, now))
	}

	fullySynchronized := o.IsSynchronized() && !o.IsPartiallySynchronized()

	return FormResponse{
		OfferID:        o.ID,
		IsEvent:        o.IsEvent,
		IsDigital:      o.IsDigital,
		CanAddRow:      !o.IsLockedByStatus() && !o.IsSynchronized() && (o.IsEvent || len(rows) == 0),
		SubmitDisabled: o.IsLockedByStatus() || fullySynchronized,
		FormErrors:     formErrors,
		Rows:           rows,
	}
}
