package stockform

// Field identifies one editable input of a stock row.
type Field string

const (
	FieldPrice                     Field = "price"
	FieldQuantity                  Field = "quantity"
	FieldBeginningDate             Field = "beginningDate"
	FieldBeginningHour             Field = "beginningHour"
	FieldBookingLimitDate          Field = "bookingLimitDate"
	FieldActivationCodesExpiration Field = "activationCodesExpiration"
)

var allFields = []Field{
	FieldPrice,
	FieldQuantity,
	FieldBeginningDate,
	FieldBeginningHour,
	FieldBookingLimitDate,
}

// wireFieldMapping translates the catalog API's error-map keys back to form
// fields.
var wireFieldMapping = map[string]Field{
	"price":                             FieldPrice,
	"quantity":                          FieldQuantity,
	"beginningDatetime":                 FieldBeginningDate,
	"bookingLimitDatetime":              FieldBookingLimitDate,
	"activationCodesExpirationDatetime": FieldActivationCodesExpiration,
}

// Operator-facing messages.
const (
	MsgFormHasErrors            = "one or more errors are present in the form"
	MsgPriceRequired            = "price is required"
	MsgPriceInvalid             = "price must be a non-negative number"
	MsgPriceAboveEducationalCap = "price cannot exceed 300 per unit for educational offers"
	MsgPriceAboveCapWarning     = "price is above 300 per unit, please double-check it"
	MsgQuantityInvalid          = "quantity must be a non-negative whole number"
	MsgBeginningDateRequired    = "the event date is required"
	MsgBeginningHourRequired    = "the event hour is required"
	MsgBookingLimitAfterStart   = "the booking limit cannot be after the event date"
	MsgFieldNotEditable         = "this field cannot be edited"
	MsgSyncStockNotDeletable    = "synchronized stocks cannot be deleted"
	MsgEventOver48hNotDeletable = "events completed more than 48h ago cannot be deleted"
	MsgPastEventNotDeletable    = "past events cannot be deleted"
	MsgLockedOfferNotDeletable  = "stocks of a pending or rejected offer cannot be deleted"
	MsgCannotAddStock           = "no stock can be added to this offer"
	MsgCodesOnDigitalThingOnly  = "activation codes can only be added to digital offers"
	MsgNoPendingCodes           = "no activation codes are pending confirmation"
)
