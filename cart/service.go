package cart

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"gorm.io/gorm"
)

var (
	ErrVariantNotFound = errors.New("product variant not found")
	ErrItemNotFound    = errors.New("cart item not found")
)

// Service mutates the stored cart of a signed-in shopper. Every change
// re-prices the touched item from the catalog.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// cartFor returns the user's cart, creating it on first use.
func cartFor(tx *gorm.DB, userID string) (*models.Cart, error) {
	c := models.Cart{UserID: userID}
	if err := tx.Where(models.Cart{UserID: userID}).FirstOrCreate(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func loadVariant(tx *gorm.DB, variantID uint) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := tx.Preload("Product").First(&v, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	if !v.Product.IsActive {
		return nil, ErrVariantNotFound
	}
	return &v, nil
}

// CheckAvailable validates a wanted quantity against the live catalog.
func (s *Service) CheckAvailable(ctx context.Context, variantID uint, qty int) error {
	if qty <= 0 {
		return pricing.ErrInvalidQuantity
	}
	v, err := loadVariant(s.db.WithContext(ctx), variantID)
	if err != nil {
		return err
	}
	if !inventory.HasStock(*v, qty) {
		return inventory.Shortage(*v, qty)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID string) (*models.Cart, error) {
	var c models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Variant.Product").
		Where("user_id = ?", userID).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

// SetQuantity sets the quantity of a variant in the cart, adding the line when
// it is missing. When add is true qty is added to what is already there.
func (s *Service) SetQuantity(ctx context.Context, userID string, variantID uint, qty int, add bool) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, pricing.ErrInvalidQuantity
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := cartFor(tx, userID)
		if err != nil {
			return err
		}
		v, err := loadVariant(tx, variantID)
		if err != nil {
			return err
		}

		err = tx.Where("cart_id = ? AND variant_id = ?", c.CartID, variantID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{CartID: c.CartID, VariantID: variantID}
		case err != nil:
			return err
		case add:
			qty += item.Quantity
		}

		if !inventory.HasStock(*v, qty) {
			return inventory.Shortage(*v, qty)
		}

		unit := pricing.DiscountedUnitPrice(v.Product)
		total, err := pricing.LineTotal(&unit, qty)
		if err != nil {
			return err
		}
		item.Quantity = qty
		item.UnitPrice = unit
		item.TotalPrice = total
		item.AddedAt = time.Now()
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return tx.Model(c).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, variantID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Cart
		if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		res := tx.Where("cart_id = ? AND variant_id = ?", c.CartID, variantID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrItemNotFound
		}
		return nil
	})
}

// Clear empties the cart but keeps the cart row.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return ClearItems(s.db.WithContext(ctx), userID)
}

// ClearItems deletes every item of the user's cart inside tx.
func ClearItems(tx *gorm.DB, userID string) error {
	sub := tx.Model(&models.Cart{}).Select("cart_id").Where("user_id = ?", userID)
	return tx.Where("cart_id IN (?)", sub).Delete(&models.CartItem{}).Error
}

type MergeResult struct {
	Merged  []uint `json:"merged"`
	Skipped []uint `json:"skipped"`
}

// MergeGuest adds a cookie cart into the user's stored cart after sign-in.
// Quantities for a variant already in the cart are summed. Lines that are no
// longer sold or that would exceed stock are skipped.
func (s *Service) MergeGuest(ctx context.Context, userID string, items map[uint]int) (*MergeResult, error) {
	ids := make([]uint, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	res := &MergeResult{Merged: []uint{}, Skipped: []uint{}}
	for _, id := range ids {
		_, err := s.SetQuantity(ctx, userID, id, items[id], true)
		switch {
		case err == nil:
			res.Merged = append(res.Merged, id)
		case errors.Is(err, ErrVariantNotFound), errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, pricing.ErrInvalidQuantity):
			log.Printf("⚠️ Guest cart line %d not merged for user %s: %v", id, userID, err)
			res.Skipped = append(res.Skipped, id)
		default:
			return nil, err
		}
	}
	return res, nil
}
