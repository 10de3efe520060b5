package stockform

import "time"

const (
	TopicStockBatchSaved             = "stock-batch-saved"
	TopicStockDeleted                = "stock-deleted"
	TopicStockActivationCodesExpired = "stock-activation-codes-expired"
)

type StockBatchSavedEvent struct {
	OfferID  string    `json:"offer_id"`
	StockIDs []string  `json:"stock_ids"`
	SavedAt  time.Time `json:"saved_at"`
}

type StockDeletedEvent struct {
	OfferID   string    `json:"offer_id"`
	StockID   string    `json:"stock_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ActivationCodesExpireEvent is both the deferred-task callback body and the
// message published when the codes of a stock reach their expiration.
type ActivationCodesExpireEvent struct {
	OfferID   string    `json:"offer_id" validate:"required"`
	StockID   string    `json:"stock_id" validate:"required"`
	ExpiresAt time.Time `json:"expires_at"`
}
