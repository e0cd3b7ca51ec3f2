package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade records one matched segment between a buy and a sell order. Created
// once per match, never mutated. Price is always the resting (maker) side's
// price.
type Trade struct {
	ID          uuid.UUID
	TradingPair TradingPair
	BuyerID     string
	SellerID    string
	BuyOrderID  uuid.UUID
	SellOrderID uuid.UUID
	Price       Decimal
	Quantity    Decimal
	Timestamp   time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf("%s %s %s @ %s (%s -> %s)",
		t.ID,
		t.TradingPair,
		t.Quantity,
		t.Price,
		t.SellerID,
		t.BuyerID,
	)
}

// PriceLevel is one row of a book snapshot: resting quantity at a price.
type PriceLevel struct {
	Price    Decimal
	Quantity Decimal
}

// Book is a point-in-time snapshot of both sides in priority order. Read-only
// once constructed.
type Book struct {
	TradingPair TradingPair
	Bids        []PriceLevel
	Asks        []PriceLevel
	Timestamp   time.Time
}
