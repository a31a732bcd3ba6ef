package domain

// Company carries the shop's display information shown on the customer-facing
// order view.
type Company struct {
	ID      string `firestore:"-" json:"id"`
	Name    string `firestore:"name" json:"name"`
	LogoURL string `firestore:"logoUrl,omitempty" json:"logo_url,omitempty"`
	Phone   string `firestore:"phone,omitempty" json:"phone,omitempty"`
	Email   string `firestore:"email,omitempty" json:"email,omitempty"`
	Address string `firestore:"address,omitempty" json:"address,omitempty"`
}
