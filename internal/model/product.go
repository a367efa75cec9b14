package model

import "github.com/shopspring/decimal"

// ProductType is the kind of décor item a product is.
type ProductType string

const (
	ProductTypeWallpaper ProductType = "wallpaper"
	ProductTypeRug       ProductType = "rug"
	ProductTypeWallPanel ProductType = "wall_panel"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeWallpaper, ProductTypeRug, ProductTypeWallPanel:
		return true
	}
	return false
}

// Product represents a product in the catalogue.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Type         ProductType     `json:"type" db:"type"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	ImageURL     string          `json:"imageUrl" db:"image_url"`
	ColorHex     string          `json:"colorHex" db:"color_hex"`
	RoomCategory string          `json:"roomCategory" db:"room_category"`
	IsNewArrival bool            `json:"isNewArrival" db:"is_new_arrival"`
}

// ProductVariant is a sellable configuration of a product, such as a colourway.
type ProductVariant struct {
	ID        int64           `json:"id" db:"id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	ImageURL  *string         `json:"imageUrl" db:"image_url"`
	ColorHex  *string         `json:"colorHex" db:"color_hex"`
}

// ProductWithVariants is a product together with all of its variants.
type ProductWithVariants struct {
	Product
	Variants []ProductVariant `json:"variants"`
}

// ProductFilter narrows a catalogue listing. Every set field must match.
type ProductFilter struct {
	Type       string `json:"type,omitempty" validate:"omitempty,oneof=wallpaper rug wall_panel"`
	Room       string `json:"room,omitempty" validate:"omitempty,max=50"`
	Color      string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Search     string `json:"search,omitempty" validate:"omitempty,max=255"`
	BestSeller bool   `json:"bestSeller,omitempty"`
	NewArrival bool   `json:"newArrival,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f ProductFilter) IsEmpty() bool {
	return f == ProductFilter{}
}
