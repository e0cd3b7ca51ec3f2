package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TradingPair is the immutable identity of one market, e.g. BTC/USD.
type TradingPair struct {
	Base  string
	Quote string
}

func (p TradingPair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

type OrderType int

const (
	// Limit orders rest in the book at their limit price until filled or
	// cancelled. The only type the matching loop acts on.
	LimitOrder OrderType = iota
	// Market, stop and iceberg orders are carried in the model for the
	// layers in front of the engine; the core does not execute their
	// semantics.
	MarketOrder
	StopOrder
	IcebergOrder
)

type OrderStatus int

const (
	StatusNew OrderStatus = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusRejected
	StatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusPartiallyFilled:
		return "partially_filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	case StatusRejected:
		return "rejected"
	case StatusExpired:
		return "expired"
	}
	return "unknown"
}

// Terminal reports whether no further transition is allowed out of s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// TimeInForce is carried on the order but not enforced by the matching core.
type TimeInForce int

const (
	GTC TimeInForce = iota
	IOC
	FOK
	GTD
)

type Order struct {
	ID             uuid.UUID   // Globally unique order id
	TradingPair    TradingPair // Market this order trades
	Side           Side        // Order side
	OrderType      OrderType   // Execution style, only Limit is matched
	Price          Decimal     // Limit price
	Quantity       Decimal     // Total volume requested
	FilledQuantity Decimal     // Volume executed so far
	Status         OrderStatus //
	TimeInForce    TimeInForce //
	AccountID      string      // Who owns this order
	CreatedAt      time.Time   // Time-priority key component
	UpdatedAt      time.Time   //
	Expiration     *time.Time  // Only meaningful for GTD
}

// RemainingQuantity derives the unfilled volume. FilledQuantity never exceeds
// Quantity while the engine owns the order.
func (o Order) RemainingQuantity() Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

func (o Order) IsFullyFilled() bool {
	return o.FilledQuantity == o.Quantity
}

func (o Order) IsExpired(now time.Time) bool {
	return o.Expiration != nil && now.After(*o.Expiration)
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s filled %s (%s)",
		o.ID,
		o.TradingPair,
		o.Side,
		o.Quantity,
		o.Price,
		o.FilledQuantity,
		o.Status,
	)
}
