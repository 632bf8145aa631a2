package domain

import "time"

const (
	customerBaseMinQuality       = 50
	customerReputationPerQuality = 10
	customerPatience             = 30 * time.Second
)

// CustomerRequest is the content produced by a customer provider
type CustomerRequest struct {
	Name      string
	Dialogue  string
	Type      ItemType
	IsBoss    bool
	AvatarURL string
}

type Customer struct {
	ID          string
	Name        string
	Dialogue    string
	RequestType ItemType
	IsBoss      bool
	AvatarURL   string

	// MinQuality, Budget and Patience are kept for presentation, they do not
	// affect the outcome of an order.
	MinQuality int
	Budget     int
	Patience   time.Duration
}

func NewCustomer(id string, request CustomerRequest, reputation int) Customer {
	return Customer{
		ID:          id,
		Name:        request.Name,
		Dialogue:    request.Dialogue,
		RequestType: request.Type,
		IsBoss:      request.IsBoss,
		AvatarURL:   request.AvatarURL,
		MinQuality:  customerBaseMinQuality + reputation/customerReputationPerQuality,
		Budget:      0,
		Patience:    customerPatience,
	}
}
