package domain

import "time"

// Rating is the customer satisfaction submission for an order. The persisted
// document is keyed by the order ID, which is what enforces at-most-once.
type Rating struct {
	ID           string    `firestore:"-" json:"id"`
	OrderID      string    `firestore:"orderId" json:"order_id"`
	Score        int       `firestore:"score" json:"score"`
	Comment      string    `firestore:"comment,omitempty" json:"comment,omitempty"`
	CustomerName string    `firestore:"customerName,omitempty" json:"customer_name,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt" json:"created_at"`
}
