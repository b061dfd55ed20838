// Package seed holds the demo catalogue, tour dates and settlements the
// register starts with.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

const artist = "The Midnight"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func product(id int64, name, sku string, cat model.Category, price, cost int64, image string, variants []string, stock ...int64) model.Product {
	p := model.Product{
		ID:       id,
		Name:     name,
		SKU:      sku,
		Category: cat,
		Price:    decimal.NewFromInt(price),
		Cost:     decimal.NewFromInt(cost),
		Image:    image,
		Variants: variants,
		Stock:    make(map[string]int64, len(variants)),
	}
	for i, v := range variants {
		p.Stock[v] = stock[i]
	}
	return p
}

// Products returns the opening catalogue.
func Products() []model.Product {
	return []model.Product{
		product(1, "Tour T-Shirt", "TS-2026", model.CategoryApparel, 35, 12, "👕",
			[]string{"S", "M", "L", "XL", "2XL"}, 50, 100, 100, 75, 40),
		product(2, "Hoodie", "HD-2026", model.CategoryApparel, 65, 25, "🧥",
			[]string{"S", "M", "L", "XL"}, 30, 60, 60, 40),
		product(3, "Vinyl LP", "VN-001", model.CategoryMusic, 30, 15, "💿",
			[]string{"Standard", "Limited Edition"}, 200, 50),
		product(4, "Poster", "PS-2026", model.CategoryAccessories, 20, 5, "🖼️",
			[]string{"18x24"}, 300),
		product(5, "Enamel Pin Set", "PN-001", model.CategoryAccessories, 15, 4, "📍",
			[]string{"Standard"}, 500),
		product(6, "Beanie", "BN-2026", model.CategoryApparel, 28, 10, "🧢",
			[]string{"One Size"}, 150),
	}
}

// Events returns the tour dates.
func Events() []model.Event {
	return []model.Event{
		{ID: 1, Artist: artist, Venue: "The Fillmore", City: "San Francisco, CA", Date: day(2026, 1, 25), Status: model.EventStatusUpcoming, Capacity: 1150, ReportedSales: decimal.Zero},
		{ID: 2, Artist: artist, Venue: "The Wiltern", City: "Los Angeles, CA", Date: day(2026, 1, 27), Status: model.EventStatusUpcoming, Capacity: 1850, ReportedSales: decimal.Zero},
		{ID: 3, Artist: artist, Venue: "Brooklyn Steel", City: "Brooklyn, NY", Date: day(2026, 2, 1), Status: model.EventStatusUpcoming, Capacity: 1800, ReportedSales: decimal.Zero},
		{ID: 4, Artist: artist, Venue: "House of Blues", City: "Chicago, IL", Date: day(2026, 1, 20), Status: model.EventStatusCompleted, Capacity: 1500, ReportedSales: decimal.NewFromInt(12450)},
	}
}

// Settlements returns past payouts split at artistRate.
func Settlements(artistRate decimal.Decimal) []model.Settlement {
	houseOfBlues := int64(4)
	rows := []model.Settlement{
		{ID: 1, EventID: &houseOfBlues, Venue: "House of Blues", City: "Chicago, IL", Date: day(2026, 1, 20), Gross: decimal.NewFromInt(12450), Status: model.SettlementStatusPending},
		{ID: 2, Venue: "9:30 Club", City: "Washington, DC", Date: day(2026, 1, 18), Gross: decimal.NewFromInt(15890), Status: model.SettlementStatusPaid},
		{ID: 3, Venue: "Terminal 5", City: "New York, NY", Date: day(2026, 1, 15), Gross: decimal.NewFromInt(30410), Status: model.SettlementStatusPaid},
	}
	for i := range rows {
		rows[i].ArtistShare, rows[i].VenueShare = model.SplitGross(rows[i].Gross, artistRate)
	}
	return rows
}

// Catalogue inserts Products through the repository. Products that already
// exist are left alone so a restart against a persistent store is harmless.
func Catalogue(ctx context.Context, products repo.ProductRepository) error {
	for _, p := range Products() {
		if _, err := products.Create(ctx, p); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	return nil
}
