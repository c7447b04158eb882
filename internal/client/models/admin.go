package models

import "encoding/json"

type AdminStats struct {
	TotalUsers            int     `json:"total_users"`
	ActiveUsers           int     `json:"active_users"`
	TotalCreditsPurchased int     `json:"total_credits_purchased"`
	TotalRevenue          float64 `json:"total_revenue"`
	TotalMeetings         int     `json:"total_meetings"`
	CompletedMeetings     int     `json:"completed_meetings"`
	AverageRating         float64 `json:"average_rating"`
}

type PaymentGateway struct {
	ID          int             `json:"id,omitempty"`
	Name        string          `json:"name" validate:"required"`
	GatewayType string          `json:"gateway_type" validate:"required"`
	IsActive    bool            `json:"is_active"`
	APIKey      string          `json:"api_key,omitempty"`
	SecretKey   string          `json:"secret_key,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
}

type RefundRequest struct {
	TransactionID int    `json:"transaction_id" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}
