package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderStripe      = "stripe"
	ProviderFlutterwave = "flutterwave"
)

const (
	DonationPending   = "pending"
	DonationSucceeded = "succeeded"
	DonationFailed    = "failed"
)

// Donation records one payment attempt. AmountMinor is in minor currency
// units (cents, kobo). TxRef is our reference passed to the provider and
// matched back on the webhook.
type Donation struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	DonorEmail  string    `gorm:"not null;index" json:"donor_email"`
	DonorName   string    `gorm:"size:120" json:"donor_name"`
	AmountMinor int64     `gorm:"not null" json:"amount_minor"`
	Currency    string    `gorm:"size:3;not null" json:"currency"`
	Provider    string    `gorm:"size:20;not null" json:"provider"`
	TxRef       string    `gorm:"uniqueIndex;not null" json:"tx_ref"`
	Status      string    `gorm:"size:20;not null;index" json:"status"`
	Message     string    `gorm:"type:text" json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
