// Package pricing computes effective prices and cart/order totals. Everything
// here is pure; the cart and order intake both call the same functions.
package pricing

import (
	"errors"
	"math"

	"github.com/amaretto/amaretto-backend/internal/app/model"
)

const (
	// ShippingFlatRate is charged once for any non-empty cart
	ShippingFlatRate = 150.0

	// DefaultSaleRate is applied when a sale is switched on without a price
	DefaultSaleRate = 0.8
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidDiscount = errors.New("discount price must be greater than zero")
)

// Line is one priced (product, quantity) pairing
type Line struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
}

// Summary holds the three totals shown at checkout
type Summary struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`
}

// EffectivePrice is what the customer pays for one unit
func EffectivePrice(p model.Product) float64 {
	if p.IsOnSale && p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// LineFromItem prices a cart item at the snapshot's effective price
func LineFromItem(item model.CartItem) Line {
	return Line{
		ProductID: item.Product.ID,
		Name:      item.Product.Name,
		UnitPrice: EffectivePrice(item.Product),
		Quantity:  item.Quantity,
	}
}

func LineTotal(l Line) (float64, error) {
	if l.Quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	return l.UnitPrice * float64(l.Quantity), nil
}

func Subtotal(lines []Line) (float64, error) {
	var sum float64
	for _, l := range lines {
		t, err := LineTotal(l)
		if err != nil {
			return 0, err
		}
		sum += t
	}
	return sum, nil
}

// ShippingCost is zero for an empty cart and the flat rate otherwise
func ShippingCost(lines []Line) float64 {
	if len(lines) == 0 {
		return 0
	}
	return ShippingFlatRate
}

func Total(lines []Line) (float64, error) {
	sub, err := Subtotal(lines)
	if err != nil {
		return 0, err
	}
	return sub + ShippingCost(lines), nil
}

func Summarize(lines []Line) (Summary, error) {
	sub, err := Subtotal(lines)
	if err != nil {
		return Summary{}, err
	}
	shipping := ShippingCost(lines)
	return Summary{Subtotal: sub, ShippingCost: shipping, Total: sub + shipping}, nil
}

// ApplySale puts p on sale. The current price becomes the original price and
// discount, when nil, defaults to DefaultSaleRate of it rounded to a whole unit.
// Calling it on a product already on sale keeps the recorded original price.
func ApplySale(p *model.Product, discount *float64) error {
	original := p.Price
	if p.IsOnSale && p.OriginalPrice != nil {
		original = *p.OriginalPrice
	}

	var price float64
	if discount != nil {
		if *discount <= 0 {
			return ErrInvalidDiscount
		}
		price = *discount
	} else {
		price = math.Round(original * DefaultSaleRate)
	}

	p.OriginalPrice = &original
	p.DiscountPrice = &price
	p.Price = price
	p.IsOnSale = true
	return nil
}

// RemoveSale restores the original price, if one was recorded, and clears the
// sale fields.
func RemoveSale(p *model.Product) {
	if p.OriginalPrice != nil {
		p.Price = *p.OriginalPrice
	}
	p.IsOnSale = false
	p.OriginalPrice = nil
	p.DiscountPrice = nil
}
