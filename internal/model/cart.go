package model

import "time"

// CartLine is the common projection over guest and server cart lines. A line
// with quantity below 1 must not exist; callers delete instead.
type CartLine struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	Image          string  `json:"image,omitempty"`
	Quantity       int     `json:"quantity"`
	Category       string  `json:"category,omitempty"`
	StockAvailable int     `json:"stock_available"`
}

// CartSnapshot is derived state. TotalItems and Subtotal are always
// recomputed from the lines, never stored independently.
type CartSnapshot struct {
	Lines      []CartLine `json:"lines"`
	TotalItems int        `json:"total_items"`
	Subtotal   float64    `json:"subtotal"`
}

func BuildSnapshot(lines []CartLine) CartSnapshot {
	snap := CartSnapshot{Lines: lines}
	for _, line := range lines {
		snap.TotalItems += line.Quantity
		snap.Subtotal += line.UnitPrice * float64(line.Quantity)
	}

	return snap
}

// Clone returns a deep copy so optimistic edits never alias the published
// snapshot.
func (s CartSnapshot) Clone() CartSnapshot {
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)

	return CartSnapshot{Lines: lines, TotalItems: s.TotalItems, Subtotal: s.Subtotal}
}

// GuestLine is a cart line held in client-local persistence. It has no
// server identity, so the product ID doubles as the line ID and at most one
// line exists per product. The product snapshot fields are captured at add
// time because a guest cart cannot look a product up on its own.
type GuestLine struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	Image          string  `json:"image,omitempty"`
	Quantity       int     `json:"quantity"`
	Category       string  `json:"category,omitempty"`
	StockAvailable int     `json:"stock_available"`
}

func (l GuestLine) CartLine() CartLine {
	return CartLine{
		ID:             l.ProductID,
		ProductID:      l.ProductID,
		Name:           l.Name,
		UnitPrice:      l.UnitPrice,
		Image:          l.Image,
		Quantity:       l.Quantity,
		Category:       l.Category,
		StockAvailable: l.StockAvailable,
	}
}

// ProductInCart is the product summary the remote API embeds in cart items.
type ProductInCart struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Thumbnail     string  `json:"thumbnail,omitempty"`
	StockQuantity int     `json:"stock_quantity"`
	IsActive      bool    `json:"is_active"`
}

// ServerLine is a cart line owned by the remote API; the line ID is
// server-assigned.
type ServerLine struct {
	ID        string        `json:"id"`
	ProductID string        `json:"product_id"`
	Quantity  int           `json:"quantity"`
	Product   ProductInCart `json:"product"`
	Subtotal  float64       `json:"subtotal"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (l ServerLine) CartLine() CartLine {
	return CartLine{
		ID:             l.ID,
		ProductID:      l.ProductID,
		Name:           l.Product.Name,
		UnitPrice:      l.Product.Price,
		Image:          l.Product.Thumbnail,
		Quantity:       l.Quantity,
		StockAvailable: l.Product.StockQuantity,
	}
}

// ServerCart is the wire shape of GET /cart.
type ServerCart struct {
	Items      []ServerLine `json:"items"`
	TotalItems int          `json:"total_items"`
	Subtotal   float64      `json:"subtotal"`
}

// Snapshot projects the server cart into the common snapshot shape, with
// totals recomputed locally as an invariant check.
func (c ServerCart) Snapshot() CartSnapshot {
	lines := make([]CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, item.CartLine())
	}

	return BuildSnapshot(lines)
}

type CartLineCreate struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartLineUpdate struct {
	Quantity int `json:"quantity"`
}
