package domain

import "time"

// LineItem is one billable row on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Invoice is a tenant-scoped invoice document.
type Invoice struct {
	ID           int64
	ClientName   string
	InvoiceTitle string
	InvoiceDate  time.Time
	Status       string
	LineItems    []LineItem
	Discount     float64
	Tax          float64
	Total        float64
	Notes        string
	CreatedAt    time.Time
}
