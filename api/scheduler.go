/*
scheduler.go - Periodic low-stock digest

PURPOSE:
  Periodically scans the inventory for products at or below their alert
  threshold and logs a digest, so an operator tailing the server log sees
  replenishment needs without opening the dashboard.

DESIGN:
  - Cron-driven (robfig/cron), schedule expression from configuration
  - Logs one summary line plus one line per low-stock product
  - Purely observational: never mutates inventory

USAGE:
  scheduler := NewStockAlertScheduler(inventory, "0 * * * *", logger)
  if err := scheduler.Start(); err != nil { ... }
  defer scheduler.Stop()

SEE ALSO:
  - handlers.go: ListLowStock endpoint (on-demand equivalent)
  - pos/inventory.go: LowStock threshold rule
*/
package api

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/warp/workshop-pos/pos"
)

// StockAlertScheduler logs a recurring low-stock digest.
type StockAlertScheduler struct {
	inventory *pos.Inventory
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewStockAlertScheduler creates a scheduler with the given cron schedule
// (standard 5-field expression). A nil logger disables logging.
func NewStockAlertScheduler(inventory *pos.Inventory, schedule string, logger *zap.Logger) *StockAlertScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAlertScheduler{
		inventory: inventory,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the digest job and starts the cron loop.
func (s *StockAlertScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.logDigest); err != nil {
		return fmt.Errorf("failed to schedule stock alerts: %w", err)
	}
	s.cron.Start()
	s.logger.Info("stock alert scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron loop. Running jobs complete.
func (s *StockAlertScheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("stock alert scheduler stopped")
}

func (s *StockAlertScheduler) logDigest() {
	low := s.inventory.LowStock()
	if len(low) == 0 {
		return
	}

	s.logger.Warn("low stock alert", zap.Int("products", len(low)))
	for _, p := range low {
		s.logger.Warn("product below threshold",
			zap.String("id", p.ID),
			zap.String("name", p.Name),
			zap.String("currentStock", p.CurrentStock.String()),
			zap.String("minStockAlert", p.MinStockAlert.String()),
		)
	}
}
