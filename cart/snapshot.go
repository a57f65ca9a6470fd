// Package cart turns either a shopper's stored cart or the guest cookie cart into
// one read-only list of priced lines, and owns the mutations of both carts.
package cart

import (
	"context"
	"sort"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Source string

const (
	SourceAccount Source = "account"
	SourceGuest   Source = "guest"
)

type Line struct {
	VariantID   uint            `json:"variant_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image,omitempty"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Snapshot struct {
	Source Source `json:"source"`
	Lines  []Line `json:"lines"`
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s Snapshot) Subtotal() decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(s.Lines))
	for _, l := range s.Lines {
		totals = append(totals, l.LineTotal)
	}
	return pricing.Subtotal(totals)
}

func (s Snapshot) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Provider builds snapshots. It never fails on an empty or missing cart.
type Provider struct {
	db *gorm.DB
}

func NewProvider(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

func newLine(v models.ProductVariant, qty int, unit decimal.Decimal) (Line, error) {
	unit = pricing.Round(unit)
	total, err := pricing.LineTotal(&unit, qty)
	if err != nil {
		return Line{}, err
	}
	return Line{
		VariantID:   v.ID,
		ProductID:   v.ProductID,
		ProductName: v.Product.Name,
		Image:       v.Product.PrimaryImage(),
		Size:        v.Size,
		Color:       v.Color,
		Quantity:    qty,
		UnitPrice:   unit,
		LineTotal:   total,
	}, nil
}

// FromAccount uses the unit prices stored on the cart items.
func (p *Provider) FromAccount(ctx context.Context, userID string) (Snapshot, error) {
	snap := Snapshot{Source: SourceAccount, Lines: []Line{}}

	var c models.Cart
	err := p.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Variant.Product.Images").
		Where("user_id = ?", userID).
		Limit(1).Find(&c).Error
	if err != nil {
		return snap, err
	}

	for _, it := range c.Items {
		if it.Variant.ID == 0 || it.Quantity <= 0 {
			continue
		}
		line, err := newLine(it.Variant, it.Quantity, it.UnitPrice)
		if err != nil {
			return snap, err
		}
		snap.Lines = append(snap.Lines, line)
	}
	return snap, nil
}

// FromGuest prices cookie lines from the live catalog. Unknown variants,
// inactive products and non-positive quantities are dropped.
func (p *Provider) FromGuest(ctx context.Context, items map[uint]int) (Snapshot, error) {
	snap := Snapshot{Source: SourceGuest, Lines: []Line{}}
	if len(items) == 0 {
		return snap, nil
	}

	ids := make([]uint, 0, len(items))
	for id, qty := range items {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return snap, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var variants []models.ProductVariant
	if err := p.db.WithContext(ctx).Preload("Product.Images").
		Where("id IN ?", ids).Order("id ASC").Find(&variants).Error; err != nil {
		return snap, err
	}

	for _, v := range variants {
		if !v.Product.IsActive {
			continue
		}
		line, err := newLine(v, items[v.ID], pricing.DiscountedUnitPrice(v.Product))
		if err != nil {
			return snap, err
		}
		snap.Lines = append(snap.Lines, line)
	}
	return snap, nil
}
