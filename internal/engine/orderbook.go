package engine

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"hati/internal/common"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderBookEngine matches orders for a single trading pair under price-time
// priority. Each side of the book is an independently locked B-tree keyed by
// (price, created-at, id); the order index is a sharded concurrent map, so
// by-id reads never contend with the side locks.
//
// AddOrder takes the opposite side's lock to match, releases it, then takes
// its own side's lock to rest the remainder. Between those two sections a
// concurrent reader can observe consumed liquidity before the incoming order
// appears in the book or the index; a GetOrder or CancelOrder racing the add
// will miss the order until resting completes.
type OrderBookEngine struct {
	pair common.TradingPair

	bidsLock sync.RWMutex
	bids     *btree.BTreeG[*common.Order]
	asksLock sync.RWMutex
	asks     *btree.BTreeG[*common.Order]

	// Every resting order is reachable here by id from the moment it rests.
	orders cmap.ConcurrentMap[string, common.Order]

	tradesLock sync.Mutex
	trades     []common.Trade
}

// lessBids sorts best bid first: highest price, then earliest arrival. The id
// tie-break keeps orders created on the same nanosecond from colliding; it
// carries no priority meaning.
func lessBids(a, b *common.Order) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// lessAsks sorts best ask first: lowest price, then earliest arrival.
func lessAsks(a, b *common.Order) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func New(pair common.TradingPair) *OrderBookEngine {
	return &OrderBookEngine{
		pair:   pair,
		bids:   btree.NewBTreeG(lessBids),
		asks:   btree.NewBTreeG(lessAsks),
		orders: cmap.New[common.Order](),
	}
}

func (e *OrderBookEngine) Pair() common.TradingPair {
	return e.pair
}

// AddOrder matches the incoming order against the opposite side and rests any
// unfilled remainder on its own side. Returns the trades generated by this
// call, oldest first. The matching path itself cannot fail; an empty book
// simply rests the order.
func (e *OrderBookEngine) AddOrder(order common.Order) ([]common.Trade, error) {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	var trades []common.Trade
	switch order.Side {
	case common.Buy:
		trades = e.match(&e.asksLock, e.asks, &order)
	case common.Sell:
		trades = e.match(&e.bidsLock, e.bids, &order)
	}

	if !order.RemainingQuantity().IsZero() {
		e.rest(&order)
	}

	e.appendTrades(trades)
	return trades, nil
}

// match sweeps the opposite side under its exclusive lock, best price first,
// while the book crosses the taker. Fully consumed makers leave the book;
// partially consumed makers are reinserted under their unchanged price-time
// key, so their priority survives the partial fill. Maker fills are written
// through to the index before the lock is released. The taker's own fill is
// settled here from the swept quantity but the taker is not stored until it
// rests.
func (e *OrderBookEngine) match(mu *sync.RWMutex, book *btree.BTreeG[*common.Order], taker *common.Order) []common.Trade {
	mu.Lock()
	defer mu.Unlock()

	var trades []common.Trade
	start := taker.RemainingQuantity()
	remaining := start
	for !remaining.IsZero() {
		maker, ok := book.Min()
		if !ok || !crosses(taker, maker) {
			break
		}
		book.Delete(maker)

		matchQty := common.MinDecimal(maker.RemainingQuantity(), remaining)
		maker.FilledQuantity = maker.FilledQuantity.Add(matchQty)
		maker.UpdatedAt = time.Now()
		if maker.IsFullyFilled() {
			maker.Status = common.StatusFilled
		} else {
			maker.Status = common.StatusPartiallyFilled
		}
		remaining = remaining.Sub(matchQty)

		trades = append(trades, e.newTrade(taker, maker, matchQty))
		e.orders.Set(maker.ID.String(), *maker)

		if !maker.IsFullyFilled() {
			book.Set(maker)
		}
	}

	taker.FilledQuantity = taker.FilledQuantity.Add(start.Sub(remaining))
	if taker.IsFullyFilled() {
		taker.Status = common.StatusFilled
	} else if !taker.FilledQuantity.IsZero() {
		taker.Status = common.StatusPartiallyFilled
	}
	return trades
}

// crosses reports whether the best opposite order's price overlaps the
// taker's. The maker is an ask when the taker buys and a bid when it sells.
func crosses(taker, maker *common.Order) bool {
	if taker.Side == common.Buy {
		return maker.Price.Cmp(taker.Price) <= 0
	}
	return maker.Price.Cmp(taker.Price) >= 0
}

// newTrade books one matched segment at the maker's price. The order already
// in the book sets the execution price, never the incoming order.
func (e *OrderBookEngine) newTrade(taker, maker *common.Order, qty common.Decimal) common.Trade {
	trade := common.Trade{
		ID:          uuid.New(),
		TradingPair: e.pair,
		Price:       maker.Price,
		Quantity:    qty,
		Timestamp:   time.Now(),
	}
	if taker.Side == common.Buy {
		trade.BuyerID, trade.SellerID = taker.AccountID, maker.AccountID
		trade.BuyOrderID, trade.SellOrderID = taker.ID, maker.ID
	} else {
		trade.BuyerID, trade.SellerID = maker.AccountID, taker.AccountID
		trade.BuyOrderID, trade.SellOrderID = maker.ID, taker.ID
	}
	return trade
}

// rest stores the order's remainder on its own side and indexes it by id.
func (e *OrderBookEngine) rest(order *common.Order) {
	switch order.Side {
	case common.Buy:
		e.bidsLock.Lock()
		e.bids.Set(order)
		e.bidsLock.Unlock()
	case common.Sell:
		e.asksLock.Lock()
		e.asks.Set(order)
		e.asksLock.Unlock()
	}
	e.orders.Set(order.ID.String(), *order)

	log.Debug().
		Stringer("id", order.ID).
		Stringer("side", order.Side).
		Stringer("price", order.Price).
		Stringer("remaining", order.RemainingQuantity()).
		Msg("order rested")
}

func (e *OrderBookEngine) appendTrades(trades []common.Trade) {
	if len(trades) == 0 {
		return
	}
	e.tradesLock.Lock()
	e.trades = append(e.trades, trades...)
	e.tradesLock.Unlock()

	for _, trade := range trades {
		log.Debug().
			Stringer("id", trade.ID).
			Stringer("price", trade.Price).
			Stringer("quantity", trade.Quantity).
			Msg("trade executed")
	}
}

// CancelOrder removes a resting order from the book. Unknown ids and orders
// already in a terminal state fail with ErrOrderNotFound and leave all state
// untouched. The side key is recomputed from the stored order itself; there
// is no reverse index.
func (e *OrderBookEngine) CancelOrder(id uuid.UUID) (common.Order, error) {
	var cancelled common.Order
	removed := e.orders.RemoveCb(id.String(), func(_ string, order common.Order, exists bool) bool {
		if !exists || order.Status.Terminal() {
			return false
		}
		cancelled = order
		return true
	})
	if !removed {
		return common.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	cancelled.Status = common.StatusCancelled
	cancelled.UpdatedAt = time.Now()

	probe := cancelled
	switch cancelled.Side {
	case common.Buy:
		e.bidsLock.Lock()
		e.bids.Delete(&probe)
		e.bidsLock.Unlock()
	case common.Sell:
		e.asksLock.Lock()
		e.asks.Delete(&probe)
		e.asksLock.Unlock()
	}

	log.Debug().Stringer("id", id).Msg("order cancelled")
	return cancelled, nil
}

// GetOrder returns a copy of the indexed order, if any. Read-only.
func (e *OrderBookEngine) GetOrder(id uuid.UUID) (common.Order, bool) {
	return e.orders.Get(id.String())
}

// Snapshot projects up to depth price levels per side, best first, under
// shared locks. Quantities are aggregated across orders resting at the same
// price before truncating to depth. Bids are read before asks; the two sides
// are not a single atomic cut.
func (e *OrderBookEngine) Snapshot(depth int) common.Book {
	e.bidsLock.RLock()
	bids := levels(e.bids, depth)
	e.bidsLock.RUnlock()

	e.asksLock.RLock()
	asks := levels(e.asks, depth)
	e.asksLock.RUnlock()

	return common.Book{
		TradingPair: e.pair,
		Bids:        bids,
		Asks:        asks,
		Timestamp:   time.Now(),
	}
}

// levels walks one side in priority order, folding same-price neighbours into
// a single level. Same-price orders are adjacent in the tree, so aggregation
// completes before the depth cut applies.
func levels(book *btree.BTreeG[*common.Order], depth int) []common.PriceLevel {
	var out []common.PriceLevel
	if depth <= 0 {
		return out
	}
	book.Scan(func(order *common.Order) bool {
		remaining := order.RemainingQuantity()
		if n := len(out); n > 0 && out[n-1].Price == order.Price {
			out[n-1].Quantity = out[n-1].Quantity.Add(remaining)
			return true
		}
		if len(out) == depth {
			return false
		}
		out = append(out, common.PriceLevel{Price: order.Price, Quantity: remaining})
		return true
	})
	return out
}

// Trades returns a copy of the append-only trade log, oldest first.
func (e *OrderBookEngine) Trades() []common.Trade {
	e.tradesLock.Lock()
	defer e.tradesLock.Unlock()

	out := make([]common.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// TradeCount reports the number of executions booked so far.
func (e *OrderBookEngine) TradeCount() int {
	e.tradesLock.Lock()
	defer e.tradesLock.Unlock()
	return len(e.trades)
}

// RestingOrders reports how many orders sit on each side of the book.
func (e *OrderBookEngine) RestingOrders() (bids, asks int) {
	e.bidsLock.RLock()
	bids = e.bids.Len()
	e.bidsLock.RUnlock()

	e.asksLock.RLock()
	asks = e.asks.Len()
	e.asksLock.RUnlock()
	return bids, asks
}
