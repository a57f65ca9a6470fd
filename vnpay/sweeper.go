package vnpay

import (
	"context"
	"log"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/metrics"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"gorm.io/gorm"
)

// Sweeper fails online payments whose gateway window closed without any
// callback. Orders and stock are left alone; staff decide what happens next.
type Sweeper struct {
	db       *gorm.DB
	interval time.Duration
	grace    time.Duration
	events   events.Publisher
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewSweeper(db *gorm.DB, interval, grace time.Duration, pub events.Publisher, m *metrics.Metrics) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if pub == nil {
		pub = events.Nop
	}
	return &Sweeper{db: db, interval: interval, grace: grace, events: pub, metrics: m, now: time.Now}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("⏳ Payment sweeper running every %s (grace %s)", s.interval, s.grace)
	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("❌ Payment sweep failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep marks stale pending payments failed and returns how many it changed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.grace)

	var stale []models.Payment
	if err := s.db.WithContext(ctx).
		Where("status = ? AND method = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.PaymentStatusPending, models.PaymentMethodBankTransfer, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range stale {
		// re-check status and window: a callback or a retry may have landed since the read
		res := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where("id = ? AND status = ? AND expires_at < ?", p.ID, models.PaymentStatusPending, cutoff).
			Update("status", models.PaymentStatusFailed)
		if res.Error != nil {
			return expired, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		expired++
		log.Printf("⌛ Payment for order #%d expired without a gateway callback", p.OrderID)
		events.Emit(ctx, s.events, events.Event{
			Type:          events.PaymentFailed,
			OrderID:       p.OrderID,
			PaymentStatus: models.PaymentStatusFailed,
			TotalAmount:   p.Amount,
			OccurredAt:    s.now().UTC(),
		})
	}
	s.metrics.PaymentsExpired(expired)
	return expired, nil
}
