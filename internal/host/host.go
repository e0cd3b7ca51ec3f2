package host

import (
	"context"
	"sync"
	"time"

	"hati/internal/engine"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// Host owns one engine for one trading pair behind a lock-guarded handle.
// It is a placeholder for the real server layer: it performs no I/O beyond
// periodic stats logging, and dies with its context.
type Host struct {
	mu     sync.RWMutex
	engine *engine.OrderBookEngine

	statsInterval time.Duration
	snapshotDepth int
}

func New(eng *engine.OrderBookEngine, statsInterval time.Duration, snapshotDepth int) *Host {
	return &Host{
		engine:        eng,
		statsInterval: statsInterval,
		snapshotDepth: snapshotDepth,
	}
}

// Engine hands out the shared engine handle.
func (h *Host) Engine() *engine.OrderBookEngine {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine
}

// Run blocks until the context is done.
func (h *Host) Run(ctx context.Context) error {
	t, _ := tomb.WithContext(ctx)
	t.Go(func() error {
		return h.statsLoop(t)
	})
	return t.Wait()
}

func (h *Host) statsLoop(t *tomb.Tomb) error {
	ticker := time.NewTicker(h.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.Dying():
			return nil
		case <-ticker.C:
			eng := h.Engine()
			bids, asks := eng.RestingOrders()
			book := eng.Snapshot(h.snapshotDepth)

			ev := log.Info().
				Stringer("pair", eng.Pair()).
				Int("bids", bids).
				Int("asks", asks).
				Int("trades", eng.TradeCount())
			if len(book.Bids) > 0 {
				ev = ev.Stringer("best_bid", book.Bids[0].Price)
			}
			if len(book.Asks) > 0 {
				ev = ev.Stringer("best_ask", book.Asks[0].Price)
			}
			ev.Msg("book stats")
		}
	}
}
