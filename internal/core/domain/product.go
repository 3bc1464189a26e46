package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ProductType is the discriminator stored on every product. Each type owns a
// category set and a size contract.
type ProductType string

const (
	TypeClothing  ProductType = "Clothing"
	TypeJeans     ProductType = "Jeans"
	TypeShoes     ProductType = "Shoes"
	TypeAccessory ProductType = "Accessory"
)

const (
	CategoryJeans       = "Jeans"
	CategoryShoes       = "Shoes"
	CategoryAccessories = "Accessories"
)

// ClothingCategories are the categories served by the Clothing type.
var ClothingCategories = []string{
	"Coats", "Dresses", "Jackets", "Jumpsuits", "Knitwear",
	"Pants", "Shorts", "Skirts", "Tops",
}

// ClothingSizes are the letter sizes accepted for Clothing.
var ClothingSizes = []string{"XS", "S", "M", "L", "XL"}

const (
	jeansMinSize = 24
	jeansMaxSize = 38
	shoesMinSize = 36
	shoesMaxSize = 42
)

const (
	NameMinLen        = 3
	NameMaxLen        = 30
	DescriptionMinLen = 3
	DescriptionMaxLen = 140
)

// TypeForCategory resolves a category string to its product type. Unknown
// categories are rejected; there is no fallback type.
func TypeForCategory(category string) (ProductType, error) {
	switch category {
	case CategoryJeans:
		return TypeJeans, nil
	case CategoryShoes:
		return TypeShoes, nil
	case CategoryAccessories:
		return TypeAccessory, nil
	}
	for _, c := range ClothingCategories {
		if c == category {
			return TypeClothing, nil
		}
	}
	return "", NewValidationError(map[string]string{
		"category": fmt.Sprintf("unknown category %q", category),
	})
}

// ValidSize reports whether size satisfies the contract of t.
func (t ProductType) ValidSize(size string) bool {
	switch t {
	case TypeClothing:
		for _, s := range ClothingSizes {
			if s == size {
				return true
			}
		}
		return false
	case TypeJeans:
		return inRange(size, jeansMinSize, jeansMaxSize)
	case TypeShoes:
		return inRange(size, shoesMinSize, shoesMaxSize)
	case TypeAccessory:
		return size == ""
	}
	return false
}

// SizeRule describes the accepted sizes of t for error messages.
func (t ProductType) SizeRule() string {
	switch t {
	case TypeClothing:
		return "size must be one of " + strings.Join(ClothingSizes, ", ")
	case TypeJeans:
		return fmt.Sprintf("size must be between %d and %d", jeansMinSize, jeansMaxSize)
	case TypeShoes:
		return fmt.Sprintf("size must be between %d and %d", shoesMinSize, shoesMaxSize)
	case TypeAccessory:
		return "accessories have no size"
	}
	return "unknown product type"
}

func inRange(size string, lo, hi int) bool {
	n, err := strconv.Atoi(size)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}

// Product is a catalog entry. Type is always consistent with Category.
type Product struct {
	ID             string
	Type           ProductType
	Name           string
	Description    string
	ImageURL       string
	ImageID        string
	Price          float64
	Category       string
	Size           string
	Featured       bool
	Sold           bool
	SoldInOrder    string
	SellerID       string
	CreatedByAdmin bool
	CreatedAt      time.Time
}

// Validate checks the base shape and the subtype contract, resolving Type
// from Category when it is unset.
func (p *Product) Validate() error {
	fields := make(map[string]string)

	if n := utf8.RuneCountInString(p.Name); n < NameMinLen || n > NameMaxLen {
		fields["name"] = fmt.Sprintf("name must be between %d and %d characters", NameMinLen, NameMaxLen)
	}
	if n := utf8.RuneCountInString(p.Description); n < DescriptionMinLen || n > DescriptionMaxLen {
		fields["description"] = fmt.Sprintf("description must be between %d and %d characters", DescriptionMinLen, DescriptionMaxLen)
	}
	if p.ImageURL == "" {
		fields["imageUrl"] = "image is required"
	}
	if p.Price < 0 {
		fields["price"] = "price must not be negative"
	}

	t, err := TypeForCategory(p.Category)
	if err != nil {
		fields["category"] = err.(*Error).Fields["category"]
	} else {
		if p.Type != "" && p.Type != t {
			fields["category"] = fmt.Sprintf("category %q does not belong to type %s", p.Category, p.Type)
		}
		p.Type = t
		if !t.ValidSize(p.Size) {
			fields["size"] = t.SizeRule()
		}
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// ProductSummary is the name/price projection used when expanding references.
type ProductSummary struct {
	ID    string
	Name  string
	Price float64
	Sold  bool
}
