package model

// Order is the business entity the producer persists. ID is supplied by
// the caller and unique; a repeated create with the same ID is a no-op.
type Order struct {
	ID     string `json:"orderId"`
	Status string `json:"status"`
}
