package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

// ParseStatus maps a caller-supplied string to a known status.
// Unknown strings are rejected; the state machine only ever sees
// the three canonical values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusShipped, StatusDelivered:
		return Status(s), true
	}
	return "", false
}

// CanTransitionTo enforces the fulfillment state machine:
// pending -> shipped -> delivered, forward only, no skipping.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

type ShippingAddress struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a ShippingAddress) Validate() error {
	switch {
	case a.Name == "":
		return &ValidationError{Field: "shipping.name", Reason: "required"}
	case a.Street == "":
		return &ValidationError{Field: "shipping.street", Reason: "required"}
	case a.City == "":
		return &ValidationError{Field: "shipping.city", Reason: "required"}
	case a.PostalCode == "":
		return &ValidationError{Field: "shipping.postalCode", Reason: "required"}
	case a.Country == "":
		return &ValidationError{Field: "shipping.country", Reason: "required"}
	}
	return nil
}

// OrderLine snapshots the product at order time. Name, price and
// image are copied so later product edits never rewrite history.
type OrderLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate root: header plus its owned lines, one
// consistency boundary.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Shipping  ShippingAddress `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	Lines     []OrderLine     `json:"lines"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// LineTotal recomputes the authoritative total from the lines.
// Callers never supply a total.
func (o *Order) LineTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (o *Order) Validate() error {
	if o.UserID == "" {
		return &ValidationError{Field: "userId", Reason: "required"}
	}
	if len(o.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "order must have at least one line"}
	}
	for _, l := range o.Lines {
		if l.Quantity <= 0 {
			return &ValidationError{Field: "lines.quantity", Reason: "must be positive"}
		}
	}
	if err := o.Shipping.Validate(); err != nil {
		return err
	}
	if !o.Total.Equal(o.LineTotal()) {
		return &ValidationError{Field: "total", Reason: "does not match line sum"}
	}
	return nil
}
