// Package cart holds the in-memory sale cart built up at the counter. Nothing here
// talks to storage; the checkout sequencer persists a cart in one go.
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPhysical Kind = "physical"
	KindService  Kind = "service"
)

func (k Kind) Valid() bool {
	return k == KindPhysical || k == KindService
}

// MaxLineQuantity bounds every line, services included.
const MaxLineQuantity = 9999

var (
	ErrQuantityLimit    = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrQuantityTooLarge = fmt.Errorf("quantity exceeds %d per line", MaxLineQuantity)
	ErrLineNotFound     = errors.New("cart line not found")
)

// QuantityLimitError names the item that ran out. It matches ErrQuantityLimit.
type QuantityLimitError struct {
	Name  string
	Stock int
}

func (e *QuantityLimitError) Error() string {
	return fmt.Sprintf("%s: only %d of %q available", ErrQuantityLimit, e.Stock, e.Name)
}

func (e *QuantityLimitError) Is(target error) bool {
	return target == ErrQuantityLimit
}

// Item is a catalog snapshot. Stock is only meaningful for physical items;
// services are never limited.
type Item struct {
	ID          int64           `json:"id"`
	Kind        Kind            `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       int             `json:"stock"`
	SiteID      *int64          `json:"site_id,omitempty"`

	// Set on printing lines priced from a service charge.
	ChargeID *int64 `json:"charge_id,omitempty"`
	Pages    int    `json:"pages,omitempty"`
}

func (i Item) Limited() bool {
	return i.Kind == KindPhysical
}

type Key string

func KeyOf(item Item) Key {
	if item.ChargeID != nil {
		return Key(fmt.Sprintf("%s:%d:%d:%d", item.Kind, item.ID, *item.ChargeID, item.Pages))
	}
	return Key(fmt.Sprintf("%s:%d", item.Kind, item.ID))
}

type Line struct {
	Key      Key  `json:"key"`
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order. The zero value is an empty cart.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts qty of item in the cart, merging with an existing line for the same key.
// A rejected add leaves the cart unchanged.
func (c *Cart) Add(item Item, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if qty > MaxLineQuantity {
		return ErrQuantityTooLarge
	}

	key := KeyOf(item)
	if i := c.index(key); i >= 0 {
		merged := c.lines[i].Quantity + qty
		if merged > MaxLineQuantity {
			return ErrQuantityTooLarge
		}
		if item.Limited() && merged > item.Stock {
			return &QuantityLimitError{Name: item.Name, Stock: item.Stock}
		}
		// refresh the snapshot so later checks use the newest stock figure
		c.lines[i].Item = item
		c.lines[i].Quantity = merged
		return nil
	}

	if item.Limited() && qty > item.Stock {
		return &QuantityLimitError{Name: item.Name, Stock: item.Stock}
	}
	c.lines = append(c.lines, Line{Key: key, Item: item, Quantity: qty})
	return nil
}

func (c *Cart) Update(key Key, qty int) error {
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if qty > MaxLineQuantity {
		return ErrQuantityTooLarge
	}
	item := c.lines[i].Item
	if item.Limited() && qty > item.Stock {
		return &QuantityLimitError{Name: item.Name, Stock: item.Stock}
	}
	c.lines[i].Quantity = qty
	return nil
}

func (c *Cart) Remove(key Key) error {
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Lines returns a copy of the lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(key Key) int {
	for i, l := range c.lines {
		if l.Key == key {
			return i
		}
	}
	return -1
}
