package cart

import (
	"errors"

	"github.com/example/marketplace/internal/domain/pricing"
)

var ErrOutOfStock = errors.New("product is out of stock")

// ProductSnapshot is the slice of product data a cart line needs. It is
// captured when the buyer adds the product and can go stale afterwards;
// checkout re-validates against the authoritative store.
type ProductSnapshot struct {
	ID    string
	Name  string
	Stock int
	Tiers []pricing.PriceTier
}

// Line is one product's selected quantity inside a buyer's cart. UnitPrice
// always equals the resolver's answer for the current quantity; every
// quantity change goes back through the resolver.
type Line struct {
	ProductID string              `json:"product_id"`
	Name      string              `json:"name"`
	Quantity  int                 `json:"quantity"`
	UnitPrice float64             `json:"unit_price"`
	Stock     int                 `json:"stock"`
	Tiers     []pricing.PriceTier `json:"price_tiers"`
}

// LineTotal returns the line's quantity times its resolved unit price.
func (l Line) LineTotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Cart holds a single buyer's in-progress selection. Lines keep insertion
// order and are keyed by product id, so re-adding a product updates its
// line instead of appending a duplicate. Aggregates are computed on read,
// never cached. A cart belongs to exactly one session and is not safe for
// concurrent use.
type Cart struct {
	lines []*Line
	index map[string]*Line
}

func New() *Cart {
	return &Cart{index: make(map[string]*Line)}
}

// AddLine puts a product in the cart. The quantity is clamped to
// [1, snapshot stock]; an existing line for the product is replaced with
// the fresh snapshot and quantity. Products with no stock are rejected.
func (c *Cart) AddLine(p ProductSnapshot, quantity int) (Line, error) {
	if p.Stock <= 0 {
		return Line{}, ErrOutOfStock
	}
	quantity = clampQuantity(quantity, p.Stock)
	price, err := pricing.ResolveUnitPrice(p.Tiers, quantity)
	if err != nil {
		return Line{}, err
	}

	if line, ok := c.index[p.ID]; ok {
		line.Name = p.Name
		line.Quantity = quantity
		line.UnitPrice = price
		line.Stock = p.Stock
		line.Tiers = p.Tiers
		return *line, nil
	}

	line := &Line{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  quantity,
		UnitPrice: price,
		Stock:     p.Stock,
		Tiers:     p.Tiers,
	}
	c.lines = append(c.lines, line)
	c.index[p.ID] = line
	return *line, nil
}

// UpdateQuantity changes a line's quantity, clamped to the snapshot stock,
// and re-resolves the unit price so the line never carries a stale price.
// An absent product id is a no-op: the UI may fire updates for a line that
// was just removed.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	line, ok := c.index[productID]
	if !ok {
		return nil
	}
	quantity = clampQuantity(quantity, line.Stock)
	price, err := pricing.ResolveUnitPrice(line.Tiers, quantity)
	if err != nil {
		return err
	}
	line.Quantity = quantity
	line.UnitPrice = price
	return nil
}

// RemoveLine drops a product from the cart. Absent ids are a no-op.
func (c *Cart) RemoveLine(productID string) {
	line, ok := c.index[productID]
	if !ok {
		return
	}
	delete(c.index, productID)
	for i, l := range c.lines {
		if l == line {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Checkout calls it after the order is durably
// persisted, never before.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]*Line)
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, *l)
	}
	return lines
}

// ItemCount returns the summed quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Total returns the summed line totals.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.LineTotal()
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func clampQuantity(quantity, stock int) int {
	if quantity < 1 {
		return 1
	}
	if quantity > stock {
		return stock
	}
	return quantity
}
