package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/tonecoach/pkg/config"
)

// Deleter removes records older than a cutoff. *Store implements it.
type Deleter interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner enforces the retention period on the ledger.
type Pruner struct {
	store  Deleter
	config config.RetentionConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPruner creates a Pruner for store.
func NewPruner(store Deleter, cfg config.RetentionConfig) *Pruner {
	return &Pruner{
		store:  store,
		config: cfg,
		logger: slog.Default().With("component", "usage.retention"),
		now:    time.Now,
	}
}

// Enabled reports whether a retention period is configured.
func (p *Pruner) Enabled() bool {
	return p.config.Days > 0
}

// Cutoff returns the time before which records are pruned.
func (p *Pruner) Cutoff() time.Time {
	return p.now().AddDate(0, 0, -p.config.Days)
}

// Prune deletes records older than the retention period. With no retention
// period it deletes nothing.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if !p.Enabled() {
		p.logger.Debug("retention disabled, nothing pruned")
		return 0, nil
	}

	cutoff := p.Cutoff()
	deleted, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune by age failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("usage records pruned",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
		)
	}

	return deleted, nil
}
