package model

import "github.com/shopspring/decimal"

// カートの明細。追加時点の商品名・価格を保存する。
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

func (l CartLine) matches(productID int64, variant string) bool {
	return l.ProductID == productID && l.Variant == variant
}

// Cart is the register's pending sale. Lines are unique per (product, variant)
// and kept in insertion order. The zero value is an empty cart.
//
// Cart does no locking and no stock checks; RegisterUsecase does both.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// 同一(商品, バリアント)は数量+1、無ければ数量1で末尾に追加
func (c *Cart) Add(p Product, variant string) {
	for i := range c.lines {
		if c.lines[i].matches(p.ID, variant) {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Variant:   variant,
		UnitPrice: p.Price,
		Quantity:  1,
	})
}

// 数量にdeltaを足す。0以下になったら明細ごと消す。明細が無ければ何もしない。
func (c *Cart) UpdateQuantity(productID int64, variant string, delta int64) {
	for i := range c.lines {
		if !c.lines[i].matches(productID, variant) {
			continue
		}
		q := c.lines[i].Quantity + delta
		if q <= 0 {
			c.removeAt(i)
			return
		}
		c.lines[i].Quantity = q
		return
	}
}

func (c *Cart) Remove(productID int64, variant string) {
	for i := range c.lines {
		if c.lines[i].matches(productID, variant) {
			c.removeAt(i)
			return
		}
	}
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Σ 単価 × 数量
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Find(productID int64, variant string) (CartLine, bool) {
	for _, l := range c.lines {
		if l.matches(productID, variant) {
			return l, true
		}
	}
	return CartLine{}, false
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// 点数の合計
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
