package transport

import "github.com/Skotchmaster/shop_backend/internal/validation"

// ProductRequest is a product payload as received, before type conversion.
// StockSet distinguishes an absent stock field from an explicit zero.
type ProductRequest struct {
	Name        string
	Price       string
	Description string
	Stock       string
	StockSet    bool
	Category    string
}

// Complete reports whether every required field was supplied.
func (r ProductRequest) Complete() bool {
	return r.Name != "" && r.Price != "" && r.Description != "" && r.Category != "" && r.StockSet
}

func (r ProductRequest) Fields() validation.ProductFields {
	return validation.ProductFields{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Stock:       r.Stock,
		Category:    r.Category,
	}
}

// ImageFile is an uploaded image held in memory.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
