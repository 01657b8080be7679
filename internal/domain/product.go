package domain

import "github.com/shopspring/decimal"

// ProductType classifies a product.
type ProductType string

// Product types
const (
	ProductGoods   ProductType = "goods"
	ProductAssets  ProductType = "assets"
	ProductService ProductType = "service"
)

// Product is a sellable item. Weight is per unit of DefaultUnit; zero means undeclared.
type Product struct {
	ID          int64
	Name        string
	Type        ProductType
	DefaultUnit string
	SaleUnit    string
	ListPrice   decimal.Decimal
	Weight      decimal.Decimal
	WeightUnit  string
}

// HasWeight reports whether the product declares a per-unit weight.
func (p Product) HasWeight() bool {
	return !p.Weight.IsZero()
}

// SellingUnit is the unit used on sale lines.
func (p Product) SellingUnit() string {
	if p.SaleUnit != "" {
		return p.SaleUnit
	}
	return p.DefaultUnit
}
