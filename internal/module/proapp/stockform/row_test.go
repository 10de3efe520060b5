package stockform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepass/cp-stock/internal/module/proapp/offer"
	"github.com/culturepass/cp-stock/internal/module/proapp/stock"
)

func activeEventOffer(departmentCode string) offer.Offer {
	return offer.Offer{
		ID:      "OF-EVENT",
		IsEvent: true,
		Status:  offer.StatusActive,
		Venue:   offer.Venue{DepartmentCode: departmentCode},
	}
}

func activeDigitalThingOffer() offer.Offer {
	return offer.Offer{
		ID:        "OF-THING",
		IsDigital: true,
		Status:    offer.StatusActive,
		Venue:     offer.Venue{DepartmentCode: "75"},
	}
}

func persistedEventStock(id string, beginning time.Time) stock.Stock {
	quantity := int64(10)
	return stock.Stock{
		ID:                id,
		Price:             decimal.RequireFromString("15.00"),
		Quantity:          &quantity,
		BeginningDatetime: &beginning,
		IsEventDeletable:  true,
		IsEventEditable:   true,
	}
}

func mustMarshal(t *testing.T, payload stock.Payload) string {
	t.Helper()
	buff, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(buff)
}

func TestNewRowFromStock_RendersVenueLocalValues(t *testing.T) {
	beginning := time.Date(2020, 12, 24, 23, 0, 0, 0, time.UTC)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "973")

	values := r.Values()
	assert.Equal(t, "15", values.Price)
	assert.Equal(t, "10", values.Quantity)
	assert.Equal(t, "2020-12-24", values.BeginningDate)
	assert.Equal(t, "20:00", values.BeginningHour)
	assert.False(t, r.IsNew())
	assert.False(t, r.Dirty())
}

func TestRow_Editability_PendingOfferLocksEverything(t *testing.T) {
	o := activeEventOffer("75")
	o.Status = offer.StatusPending

	beginning := time.Now().Add(72 * time.Hour)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "75")

	for field, editable := range r.Editability(o) {
		assert.Falsef(t, editable, "field %s should be locked", field)
	}
}

func TestRow_Editability_RejectedOfferLocksEverything(t *testing.T) {
	o := activeEventOffer("75")
	o.Status = offer.StatusRejected

	r := NewBlankRow("75")

	for field, editable := range r.Editability(o) {
		assert.Falsef(t, editable, "field %s should be locked", field)
	}
}

func TestRow_Editability_FullySynchronizedOfferLocksEverything(t *testing.T) {
	o := activeEventOffer("75")
	o.LastProvider = &offer.Provider{ID: "PR1", Name: "ciné office"}

	beginning := time.Now().Add(72 * time.Hour)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "75")

	for field, editable := range r.Editability(o) {
		assert.Falsef(t, editable, "field %s should be locked", field)
	}
}

func TestRow_Editability_PartialSyncLocksOnlyBeginningFields(t *testing.T) {
	o := activeEventOffer("75")
	o.LastProvider = &offer.Provider{ID: "PR1", Name: "Allociné"}

	beginning := time.Now().Add(72 * time.Hour)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "75")

	editable := r.Editability(o)
	assert.False(t, editable[FieldBeginningDate])
	assert.False(t, editable[FieldBeginningHour])
	assert.True(t, editable[FieldPrice])
	assert.True(t, editable[FieldQuantity])
	assert.True(t, editable[FieldBookingLimitDate])
}

func TestRow_Editability_NonEditableEventLocksEverything(t *testing.T) {
	o := activeEventOffer("75")

	s := persistedEventStock("ST1", time.Now().Add(-72*time.Hour))
	s.IsEventEditable = false
	r := NewRowFromStock(s, "75")

	for field, editable := range r.Editability(o) {
		assert.Falsef(t, editable, "field %s should be locked", field)
	}
}

func TestRow_Editability_PersistedCodesLockQuantity(t *testing.T) {
	o := activeDigitalThingOffer()

	s := stock.Stock{ID: "ST1", Price: decimal.New(10, 0), ActivationCodes: []string{"ABH", "JHB"}}
	r := NewRowFromStock(s, "75")

	editable := r.Editability(o)
	assert.False(t, editable[FieldQuantity])
	assert.True(t, editable[FieldPrice])
}

func TestRow_SetField_RefusedOnLockedField(t *testing.T) {
	o := activeEventOffer("75")
	o.LastProvider = &offer.Provider{ID: "PR1", Name: "allociné"}

	beginning := time.Now().Add(72 * time.Hour)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "75")

	err := r.SetField(o, FieldBeginningDate, "2030-01-01")

	require.Error(t, err)
	assert.False(t, r.Dirty())
}

func TestRow_SetField_MovingBeginningSnapsBookingLimit(t *testing.T) {
	o := activeEventOffer("75")
	r := NewBlankRow("75")

	require.NoError(t, r.SetField(o, FieldBookingLimitDate, "2021-01-20"))
	require.NoError(t, r.SetField(o, FieldBeginningDate, "2021-01-15"))

	assert.Equal(t, "2021-01-15", r.Values().BookingLimitDate)
}

func TestRow_Deletability(t *testing.T) {
	now := time.Date(2021, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("a new row is always deletable", func(t *testing.T) {
		deletable, reason := NewBlankRow("75").Deletability(activeEventOffer("75"), now)
		assert.True(t, deletable)
		assert.Empty(t, reason)
	})

	t.Run("synchronized stocks are not deletable", func(t *testing.T) {
		o := activeEventOffer("75")
		o.LastProvider = &offer.Provider{ID: "PR1", Name: "allociné"}
		r := NewRowFromStock(persistedEventStock("ST1", now.Add(72*time.Hour)), "75")

		deletable, reason := r.Deletability(o, now)
		assert.False(t, deletable)
		assert.Equal(t, MsgSyncStockNotDeletable, reason)
	})

	t.Run("locked offers keep their stocks", func(t *testing.T) {
		o := activeEventOffer("75")
		o.Status = offer.StatusPending
		r := NewRowFromStock(persistedEventStock("ST1", now.Add(72*time.Hour)), "75")

		deletable, reason := r.Deletability(o, now)
		assert.False(t, deletable)
		assert.Equal(t, MsgLockedOfferNotDeletable, reason)
	})

	t.Run("events over 48h in the past get the elapsed message", func(t *testing.T) {
		s := persistedEventStock("ST1", now.Add(-72*time.Hour))
		s.IsEventDeletable = false
		r := NewRowFromStock(s, "75")

		deletable, reason := r.Deletability(activeEventOffer("75"), now)
		assert.False(t, deletable)
		assert.Equal(t, MsgEventOver48hNotDeletable, reason)
	})

	t.Run("events within the 48h window get the past-event message", func(t *testing.T) {
		s := persistedEventStock("ST1", now.Add(-24*time.Hour))
		s.IsEventDeletable = false
		r := NewRowFromStock(s, "75")

		deletable, reason := r.Deletability(activeEventOffer("75"), now)
		assert.False(t, deletable)
		assert.Equal(t, MsgPastEventNotDeletable, reason)
	})
}

func TestRow_Validate(t *testing.T) {
	t.Run("price is required", func(t *testing.T) {
		o := activeEventOffer("75")
		r := NewBlankRow("75")

		problems := r.Validate(o)
		assert.Equal(t, MsgPriceRequired, problems[FieldPrice])
	})

	t.Run("price must be a non-negative number", func(t *testing.T) {
		o := activeDigitalThingOffer()
		r := NewBlankRow("75")
		require.NoError(t, r.SetField(o, FieldPrice, "-3"))

		problems := r.Validate(o)
		assert.Equal(t, MsgPriceInvalid, problems[FieldPrice])
	})

	t.Run("educational offers refuse prices above 300", func(t *testing.T) {
		o := activeDigitalThingOffer()
		o.IsEducational = true
		r := NewBlankRow("75")
		require.NoError(t, r.SetField(o, FieldPrice, "300.01"))

		problems := r.Validate(o)
		assert.Equal(t, MsgPriceAboveEducationalCap, problems[FieldPrice])
	})

	t.Run("quantity must be a whole non-negative number", func(t *testing.T) {
		o := activeDigitalThingOffer()
		r := NewBlankRow("75")
		require.NoError(t, r.SetField(o, FieldPrice, "10"))
		require.NoError(t, r.SetField(o, FieldQuantity, "-1"))

		problems := r.Validate(o)
		assert.Equal(t, MsgQuantityInvalid, problems[FieldQuantity])
	})

	t.Run("events require a date and an hour", func(t *testing.T) {
		o := activeEventOffer("75")
		r := NewBlankRow("75")
		require.NoError(t, r.SetField(o, FieldPrice, "10"))

		problems := r.Validate(o)
		assert.Equal(t, MsgBeginningDateRequired, problems[FieldBeginningDate])
		assert.Equal(t, MsgBeginningHourRequired, problems[FieldBeginningHour])
	})

	t.Run("the booking limit cannot land after the beginning", func(t *testing.T) {
		o := activeEventOffer("75")
		r := NewBlankRow("75")
		require.NoError(t, r.SetField(o, FieldPrice, "10"))
		require.NoError(t, r.SetField(o, FieldBeginningDate, "2021-01-15"))
		require.NoError(t, r.SetField(o, FieldBeginningHour, "20:00"))
		require.NoError(t, r.SetField(o, FieldBookingLimitDate, "2021-01-20"))

		problems := r.Validate(o)
		assert.Equal(t, MsgBookingLimitAfterStart, problems[FieldBookingLimitDate])
	})

	t.Run("a valid event row has no problem", func(t *testing.T) {
		o := activeEventOffer("75")
		r := NewBlankRow("75")
		require.NoError(t, r.SetField(o, FieldPrice, "10"))
		require.NoError(t, r.SetField(o, FieldBeginningDate, "2021-01-15"))
		require.NoError(t, r.SetField(o, FieldBeginningHour, "20:00"))

		assert.Empty(t, r.Validate(o))
	})
}

func TestRow_Warnings_HighPriceIsAdvisoryForNonEducationalOffers(t *testing.T) {
	o := activeDigitalThingOffer()
	r := NewBlankRow("75")
	require.NoError(t, r.SetField(o, FieldPrice, "450"))

	assert.Empty(t, r.Validate(o))
	assert.Equal(t, []string{MsgPriceAboveCapWarning}, r.Warnings(o))
}

func TestRow_SubmissionPayload_NilWhenPristine(t *testing.T) {
	beginning := time.Date(2020, 12, 24, 23, 0, 0, 0, time.UTC)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "973")

	payload, err := r.SubmissionPayload(activeEventOffer("973"))

	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRow_SubmissionPayload_NilWhenEditsAreReverted(t *testing.T) {
	o := activeEventOffer("973")
	beginning := time.Date(2020, 12, 24, 23, 0, 0, 0, time.UTC)
	r := NewRowFromStock(persistedEventStock("ST1", beginning), "973")

	require.NoError(t, r.SetField(o, FieldPrice, "20"))
	require.True(t, r.Dirty())

	// Back to the hydrated value: nothing left to submit.
	require.NoError(t, r.SetField(o, FieldPrice, "15"))
	require.False(t, r.Dirty())

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRow_SubmissionPayload_EventInCayenne(t *testing.T) {
	o := activeEventOffer("973")
	r := NewBlankRow("973")
	require.NoError(t, r.SetField(o, FieldPrice, "15.00"))
	require.NoError(t, r.SetField(o, FieldQuantity, "10"))
	require.NoError(t, r.SetField(o, FieldBeginningDate, "2020-12-24"))
	require.NoError(t, r.SetField(o, FieldBeginningHour, "20:00"))
	require.NoError(t, r.SetField(o, FieldBookingLimitDate, "2020-12-22"))

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"price": "15",
		"quantity": "10",
		"beginningDatetime": "2020-12-24T23:00:00Z",
		"bookingLimitDatetime": "2020-12-23T02:59:59Z"
	}`, mustMarshal(t, payload))
}

func TestRow_SubmissionPayload_SameDayBookingLimitIsExactBeginning(t *testing.T) {
	o := activeEventOffer("973")
	r := NewBlankRow("973")
	require.NoError(t, r.SetField(o, FieldPrice, "15"))
	require.NoError(t, r.SetField(o, FieldBeginningDate, "2020-12-24"))
	require.NoError(t, r.SetField(o, FieldBeginningHour, "20:00"))
	require.NoError(t, r.SetField(o, FieldBookingLimitDate, "2020-12-24"))

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"price": "15",
		"quantity": null,
		"beginningDatetime": "2020-12-24T23:00:00Z",
		"bookingLimitDatetime": "2020-12-24T23:00:00Z"
	}`, mustMarshal(t, payload))
}

func TestRow_SubmissionPayload_PersistedEventCarriesItsID(t *testing.T) {
	o := activeEventOffer("75")
	beginning := time.Date(2021, 1, 15, 19, 0, 0, 0, time.UTC)
	r := NewRowFromStock(persistedEventStock("ST7", beginning), "75")
	require.NoError(t, r.SetField(o, FieldPrice, "20"))

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "ST7",
		"price": "20",
		"quantity": "10",
		"beginningDatetime": "2021-01-15T19:00:00Z",
		"bookingLimitDatetime": null
	}`, mustMarshal(t, payload))
}

func TestRow_SubmissionPayload_ThingWithManualQuantity(t *testing.T) {
	o := activeDigitalThingOffer()
	r := NewBlankRow("75")
	require.NoError(t, r.SetField(o, FieldPrice, "10"))
	require.NoError(t, r.SetField(o, FieldQuantity, "5"))

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"price": "10",
		"quantity": "5",
		"bookingLimitDatetime": null
	}`, mustMarshal(t, payload))
}

func TestRow_ActivationCodes_StageConfirmLifecycle(t *testing.T) {
	o := activeDigitalThingOffer()
	r := NewBlankRow("75")
	require.NoError(t, r.SetField(o, FieldPrice, "10"))

	preview, err := IngestActivationCodes("ABH\nJHB")
	require.NoError(t, err)

	require.NoError(t, r.StageActivationCodes(o, preview))
	assert.Equal(t, "2", r.Values().Quantity)
	assert.True(t, r.HasStagedActivationCodes())
	assert.False(t, r.Editability(o)[FieldQuantity])

	require.NoError(t, r.ConfirmActivationCodes("2021-03-22"))
	assert.False(t, r.HasStagedActivationCodes())
	assert.Equal(t, 2, r.ActivationCodeCount())
	assert.Equal(t, "2021-03-21", r.Values().BookingLimitDate)

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"price": "10",
		"quantity": 2,
		"bookingLimitDatetime": "2021-03-21T22:59:59Z",
		"activationCodes": ["ABH", "JHB"],
		"activationCodesExpirationDatetime": "2021-03-22T22:59:59Z"
	}`, mustMarshal(t, payload))
}

func TestRow_ActivationCodes_ConfirmWithoutExpirationSendsExplicitNull(t *testing.T) {
	o := activeDigitalThingOffer()
	r := NewBlankRow("75")
	require.NoError(t, r.SetField(o, FieldPrice, "10"))

	preview, err := IngestActivationCodes("ABH\nJHB")
	require.NoError(t, err)
	require.NoError(t, r.StageActivationCodes(o, preview))
	require.NoError(t, r.ConfirmActivationCodes(""))

	payload, err := r.SubmissionPayload(o)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"price": "10",
		"quantity": 2,
		"bookingLimitDatetime": null,
		"activationCodes": ["ABH", "JHB"],
		"activationCodesExpirationDatetime": null
	}`, mustMarshal(t, payload))
}

func TestRow_ActivationCodes_DiscardRestoresQuantity(t *testing.T) {
	o := activeDigitalThingOffer()
	r := NewBlankRow("75")
	require.NoError(t, r.SetField(o, FieldQuantity, "30"))

	preview, err := IngestActivationCodes("ABH\nJHB")
	require.NoError(t, err)
	require.NoError(t, r.StageActivationCodes(o, preview))
	assert.Equal(t, "2", r.Values().Quantity)

	r.DiscardActivationCodes()

	assert.Equal(t, "30", r.Values().Quantity)
	assert.False(t, r.HasStagedActivationCodes())
	assert.Zero(t, r.ActivationCodeCount())
}

func TestRow_StageActivationCodes_RefusedOutsideDigitalThings(t *testing.T) {
	preview, err := IngestActivationCodes("ABH")
	require.NoError(t, err)

	event := activeEventOffer("75")
	assert.Error(t, NewBlankRow("75").StageActivationCodes(event, preview))

	physical := activeDigitalThingOffer()
	physical.IsDigital = false
	assert.Error(t, NewBlankRow("75").StageActivationCodes(physical, preview))
}

func TestRow_ApplyFieldError_SurvivesUntilTheFieldIsEdited(t *testing.T) {
	o := activeDigitalThingOffer()
	r := NewBlankRow("75")

	r.ApplyFieldError(FieldPrice, "price out of accepted range")
	assert.Equal(t, "price out of accepted range", r.FieldErrors()[FieldPrice])

	require.NoError(t, r.SetField(o, FieldPrice, "12"))
	assert.Empty(t, r.FieldErrors())
}

func TestRow_RemainingDisplay(t *testing.T) {
	quantity := int64(10)
	s := stock.Stock{ID: "ST1", Price: decimal.New(10, 0), Quantity: &quantity, BookingsQuantity: 4}
	r := NewRowFromStock(s, "75")

	assert.Equal(t, "6", r.RemainingDisplay())

	unlimited := stock.Stock{ID: "ST2", Price: decimal.New(10, 0)}
	assert.Equal(t, UnlimitedDisplay, NewRowFromStock(unlimited, "75").RemainingDisplay())
}
