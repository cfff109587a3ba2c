package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrUnknownPackage = errors.New("unknown token package")

// Package is a purchasable bundle of energy tokens.
type Package struct {
	ID     string
	Title  string
	Tokens int
	Price  decimal.Decimal
}

// MinorUnits is the price in the smallest currency unit, as Stripe expects it.
func (p Package) MinorUnits() int64 {
	return p.Price.Shift(2).Round(0).IntPart()
}

// PackageView is the JSON shape of a package.
type PackageView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tokens   int    `json:"tokens"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

func (p Package) View(currency string) PackageView {
	return PackageView{
		ID:       p.ID,
		Title:    p.Title,
		Tokens:   p.Tokens,
		Price:    p.Price.StringFixed(2),
		Currency: currency,
	}
}

var packages = []Package{
	{ID: "starter", Title: "Starter", Tokens: 100, Price: decimal.RequireFromString("5.00")},
	{ID: "standard", Title: "Standard", Tokens: 250, Price: decimal.RequireFromString("10.00")},
	{ID: "pro", Title: "Pro", Tokens: 700, Price: decimal.RequireFromString("25.00")},
}

func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

func FindPackage(id string) (Package, error) {
	for _, p := range packages {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, fmt.Errorf("%w: %q", ErrUnknownPackage, id)
}
