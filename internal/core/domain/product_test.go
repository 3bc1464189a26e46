package domain

import (
	"errors"
	"strings"
	"testing"
)

func validProduct(category, size string) *Product {
	return &Product{
		Name:        "Wool coat",
		Description: "Warm and barely used",
		ImageURL:    "/images/abc",
		Price:       450,
		Category:    category,
		Size:        size,
	}
}

func TestTypeForCategory(t *testing.T) {
	cases := []struct {
		category string
		want     ProductType
	}{
		{"Coats", TypeClothing},
		{"Tops", TypeClothing},
		{"Skirts", TypeClothing},
		{"Jeans", TypeJeans},
		{"Shoes", TypeShoes},
		{"Accessories", TypeAccessory},
	}
	for _, tc := range cases {
		got, err := TypeForCategory(tc.category)
		if err != nil {
			t.Fatalf("category %q: unexpected error %v", tc.category, err)
		}
		if got != tc.want {
			t.Errorf("category %q: want %s, got %s", tc.category, tc.want, got)
		}
	}
}

func TestTypeForCategory_UnknownIsRejected(t *testing.T) {
	_, err := TypeForCategory("Hats")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	var de *Error
	if !errors.As(err, &de) || de.Fields["category"] == "" {
		t.Fatalf("expected category field message, got %+v", err)
	}
}

func TestProductType_ValidSize(t *testing.T) {
	cases := []struct {
		typ  ProductType
		size string
		want bool
	}{
		{TypeShoes, "36", true},
		{TypeShoes, "42", true},
		{TypeShoes, "35", false},
		{TypeShoes, "43", false},
		{TypeShoes, "M", false},
		{TypeJeans, "24", true},
		{TypeJeans, "38", true},
		{TypeJeans, "23", false},
		{TypeJeans, "39", false},
		{TypeClothing, "XS", true},
		{TypeClothing, "XL", true},
		{TypeClothing, "XXL", false},
		{TypeClothing, "38", false},
		{TypeAccessory, "", true},
		{TypeAccessory, "M", false},
	}
	for _, tc := range cases {
		if got := tc.typ.ValidSize(tc.size); got != tc.want {
			t.Errorf("%s size %q: want %v, got %v", tc.typ, tc.size, tc.want, got)
		}
	}
}

func TestProduct_Validate_ResolvesType(t *testing.T) {
	p := validProduct("Shoes", "40")
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != TypeShoes {
		t.Errorf("expected type Shoes, got %s", p.Type)
	}
}

func TestProduct_Validate_FieldMessages(t *testing.T) {
	p := validProduct("Jeans", "40")
	p.Name = "ab"
	p.Description = strings.Repeat("x", DescriptionMaxLen+1)

	err := p.Validate()
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error, got %v", err)
	}
	for _, f := range []string{"name", "description", "size"} {
		if de.Fields[f] == "" {
			t.Errorf("expected message for %s, got %+v", f, de.Fields)
		}
	}
}

func TestProduct_Validate_TypeMismatch(t *testing.T) {
	p := validProduct("Shoes", "40")
	p.Type = TypeJeans
	if KindOf(p.Validate()) != KindValidation {
		t.Fatal("expected mismatch between type and category to be rejected")
	}
}

func TestProduct_Validate_NameBoundsAreInclusive(t *testing.T) {
	p := validProduct("Accessories", "")
	p.Name = strings.Repeat("a", NameMaxLen)
	p.Description = "abc"
	if err := p.Validate(); err != nil {
		t.Fatalf("expected bounds to be inclusive, got %v", err)
	}
}
