package stockform

type UpdateRowRequest struct {
	Price            *string `json:"price"`
	Quantity         *string `json:"quantity"`
	BeginningDate    *string `json:"beginningDate" validate:"omitempty,datetime=2006-01-02"`
	BeginningHour    *string `json:"beginningHour" validate:"omitempty,datetime=15:04"`
	BookingLimitDate *string `json:"bookingLimitDate" validate:"omitempty,datetime=2006-01-02"`
}

type UploadActivationCodesRequest struct {
	FileContents string `json:"fileContents" validate:"required"`
}

type ConfirmActivationCodesRequest struct {
	ExpirationDate string `json:"expirationDate" validate:"omitempty,datetime=2006-01-02"`
}
