package offer

import "strings"

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusRejected Status = "REJECTED"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusSoldOut  Status = "SOLD_OUT"
	StatusExpired  Status = "EXPIRED"
)

// PartialSyncProviderName is the one catalog provider whose synchronized
// offers keep price, booking limit and quantity locally editable.
const PartialSyncProviderName = "allociné"

type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Venue struct {
	DepartmentCode string `json:"departmentCode"`
}

type Offer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	IsEvent       bool      `json:"isEvent"`
	IsDigital     bool      `json:"isDigital"`
	IsEducational bool      `json:"isEducational"`
	Status        Status    `json:"status"`
	Venue         Venue     `json:"venue"`
	LastProvider  *Provider `json:"lastProvider"`
}

// IsSynchronized reports whether the offer's stocks are controlled by an
// external catalog provider.
func (o Offer) IsSynchronized() bool {
	return o.LastProvider != nil
}

// IsPartiallySynchronized reports whether the provider only controls the
// event date and hour fields.
func (o Offer) IsPartiallySynchronized() bool {
	return o.LastProvider != nil && strings.EqualFold(o.LastProvider.Name, PartialSyncProviderName)
}

// IsLockedByStatus reports whether the offer's lifecycle status forbids any
// stock edition at all.
func (o Offer) IsLockedByStatus() bool {
	return o.Status == StatusRejected || o.Status == StatusPending
}
