package models

import "time"

type TransactionType string

const (
	TxPurchased TransactionType = "purchased"
	TxSpent     TransactionType = "spent"
	TxEarned    TransactionType = "earned"
	TxRefunded  TransactionType = "refunded"
	TxBonus     TransactionType = "bonus"
)

// Credit reports whether the transaction increases the balance.
func (t TransactionType) Credit() bool {
	return t != TxSpent
}

type Balance struct {
	Balance int `json:"balance"`
}

type Transaction struct {
	ID             int             `json:"id"`
	User           int             `json:"user,omitempty"`
	UserName       string          `json:"user_name,omitempty"`
	Type           TransactionType `json:"transaction_type"`
	Amount         int             `json:"amount"`
	Description    string          `json:"description"`
	RelatedMeeting *int            `json:"related_meeting"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreditPackage is an entry of the purchase catalogue.
type CreditPackage struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Credits int     `json:"amount"`
	Price   float64 `json:"price"`
}

type PurchaseRequest struct {
	PackageID int     `json:"packageId" validate:"required"`
	Amount    int     `json:"amount" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gt=0"`
}

// PurchaseFor builds the purchase payload for a catalogue package.
func PurchaseFor(p CreditPackage) PurchaseRequest {
	return PurchaseRequest{PackageID: p.ID, Amount: p.Credits, Price: p.Price}
}
