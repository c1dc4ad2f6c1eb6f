package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client statuses accepted by the API.
const (
	ClientStatusActive      = "Active"
	ClientStatusDeactivated = "Deactivated"
	ClientStatusBlacklisted = "Blacklisted"
)

// ClientStatuses lists the allowed status values in display order.
var ClientStatuses = []string{ClientStatusActive, ClientStatusDeactivated, ClientStatusBlacklisted}

// ValidClientStatus reports whether s is an allowed status value.
func ValidClientStatus(s string) bool {
	for _, v := range ClientStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Client is a billable customer stored in a tenant database.
type Client struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Phone      string
	Company    *string
	Notes      *string
	JoinedDate *time.Time

	AddressLine1    *string
	AddressLine2    *string
	City            *string
	State           *string
	PostalCode      *string
	Country         *string
	TaxID           *string
	DefaultCurrency *string
	DefaultTaxRate  *float64
	PaymentTerms    *string
	DiscountRate    *float64

	Status    string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientPatch carries partial updates to a client. Nil fields are untouched.
type ClientPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Company    *string
	Notes      *string
	JoinedDate *time.Time

	AddressLine1    *string
	AddressLine2    *string
	City            *string
	State           *string
	PostalCode      *string
	Country         *string
	TaxID           *string
	DefaultCurrency *string
	DefaultTaxRate  *float64
	PaymentTerms    *string
	DiscountRate    *float64

	Status *string
}

// ClientFilter narrows a client listing.
type ClientFilter struct {
	Query    string // matches name, email, or company
	Status   string
	Page     int
	PageSize int
}
