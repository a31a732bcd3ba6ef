package domain

import "time"

// OrderStatus enumerates the lifecycle states of a service order.
type OrderStatus string

const (
	OrderStatusQuote    OrderStatus = "quote"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusProgress OrderStatus = "progress"
	OrderStatusDone     OrderStatus = "done"
	OrderStatusCanceled OrderStatus = "canceled"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusQuote, OrderStatusApproved, OrderStatusProgress, OrderStatusDone, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDone || s == OrderStatusCanceled
}

// CustomerRef identifies the customer an order or token belongs to.
type CustomerRef struct {
	ID    string `firestore:"id,omitempty" json:"id,omitempty"`
	Name  string `firestore:"name,omitempty" json:"name,omitempty"`
	Phone string `firestore:"phone,omitempty" json:"phone,omitempty"`
	Email string `firestore:"email,omitempty" json:"email,omitempty"`
}

// DeviceRef describes the equipment the order services.
type DeviceRef struct {
	ID     string `firestore:"id,omitempty" json:"id,omitempty"`
	Name   string `firestore:"name,omitempty" json:"name,omitempty"`
	Serial string `firestore:"serial,omitempty" json:"serial,omitempty"`
}

// ServiceLine is one labour item on the order.
type ServiceLine struct {
	Name        string `firestore:"name" json:"name"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
	Value       int64  `firestore:"value" json:"value"`
}

// ProductLine is one parts/product item on the order.
type ProductLine struct {
	Name        string `firestore:"name" json:"name"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
	UnitValue   int64  `firestore:"unitValue" json:"unit_value"`
	Quantity    int64  `firestore:"quantity" json:"quantity"`
}

// Photo is a customer-visible attachment stored as an already-public URL.
type Photo struct {
	ID          string `firestore:"id,omitempty" json:"id,omitempty"`
	URL         string `firestore:"url" json:"url"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
}

// Order is the aggregate root tracking one repair/service job. All monetary
// amounts are integer cents.
type Order struct {
	ID              string        `firestore:"-" json:"id"`
	Number          int64         `firestore:"number" json:"number"`
	Status          OrderStatus   `firestore:"status" json:"status"`
	Customer        CustomerRef   `firestore:"customer" json:"customer"`
	Device          DeviceRef     `firestore:"device,omitempty" json:"device,omitempty"`
	Services        []ServiceLine `firestore:"services,omitempty" json:"services,omitempty"`
	Products        []ProductLine `firestore:"products,omitempty" json:"products,omitempty"`
	Photos          []Photo       `firestore:"photos,omitempty" json:"photos,omitempty"`
	Total           int64         `firestore:"total" json:"total"`
	Discount        int64         `firestore:"discount" json:"discount"`
	PaidAmount      int64         `firestore:"paidAmount" json:"paid_amount"`
	DueDate         *time.Time    `firestore:"dueDate,omitempty" json:"due_date,omitempty"`
	RejectionReason string        `firestore:"rejectionReason,omitempty" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time    `firestore:"approvedAt,omitempty" json:"approved_at,omitempty"`
	RejectedAt      *time.Time    `firestore:"rejectedAt,omitempty" json:"rejected_at,omitempty"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"created_at"`
	UpdatedAt       time.Time     `firestore:"updatedAt" json:"updated_at"`
}

// RemainingBalance derives the amount still owed. Overpayment yields a
// negative value, which is surfaced rather than clamped.
func (o Order) RemainingBalance() int64 {
	return o.Total - o.Discount - o.PaidAmount
}
