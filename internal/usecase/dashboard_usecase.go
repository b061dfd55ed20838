package usecase

import (
	"context"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

const (
	dashboardRecent   = 5
	dashboardUpcoming = 3
	dashboardTop      = 4
)

type DashboardUsecase struct {
	transactions repo.TransactionRepository
	events       repo.EventRepository
}

func NewDashboardUsecase(transactions repo.TransactionRepository, events repo.EventRepository) *DashboardUsecase {
	return &DashboardUsecase{transactions: transactions, events: events}
}

type TopSeller struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Dashboard struct {
	SalesTotal         decimal.Decimal     `json:"sales_total"`
	ItemsSold          int64               `json:"items_sold"`
	AverageTransaction decimal.Decimal     `json:"average_transaction"`
	TransactionCount   int                 `json:"transaction_count"`
	TopSellers         []TopSeller         `json:"top_sellers"`
	Recent             []model.Transaction `json:"recent_transactions"`
	UpcomingEvents     []model.Event       `json:"upcoming_events"`
}

// Get builds the overview. Refunded sales are listed in Recent but do not
// count towards the totals.
func (u *DashboardUsecase) Get(ctx context.Context) (Dashboard, error) {
	txs, err := u.transactions.List(ctx, repo.TransactionListFilter{})
	if err != nil {
		return Dashboard{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	upcoming, err := u.events.List(ctx, model.EventStatusUpcoming)
	if err != nil {
		return Dashboard{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d := summarizeSales(txs)
	if len(txs) > dashboardRecent {
		d.Recent = txs[:dashboardRecent]
	} else {
		d.Recent = txs
	}
	if len(upcoming) > dashboardUpcoming {
		upcoming = upcoming[:dashboardUpcoming]
	}
	d.UpcomingEvents = upcoming
	return d, nil
}

func summarizeSales(txs []model.Transaction) Dashboard {
	d := Dashboard{
		SalesTotal:         decimal.Zero,
		AverageTransaction: decimal.Zero,
		TopSellers:         []TopSeller{},
	}

	byProduct := map[int64]*TopSeller{}
	for _, t := range txs {
		if t.IsRefunded() {
			continue
		}
		d.TransactionCount++
		d.SalesTotal = d.SalesTotal.Add(t.Total)
		for _, l := range t.Lines {
			d.ItemsSold += l.Quantity
			ts, ok := byProduct[l.ProductID]
			if !ok {
				ts = &TopSeller{ProductID: l.ProductID, Name: l.Name, SKU: l.SKU, Revenue: decimal.Zero}
				byProduct[l.ProductID] = ts
			}
			ts.Quantity += l.Quantity
			ts.Revenue = ts.Revenue.Add(l.Subtotal())
		}
	}
	if d.TransactionCount > 0 {
		d.AverageTransaction = d.SalesTotal.Div(decimal.NewFromInt(int64(d.TransactionCount))).Round(2)
	}

	for _, ts := range byProduct {
		d.TopSellers = append(d.TopSellers, *ts)
	}
	sort.Slice(d.TopSellers, func(i, j int) bool {
		a, b := d.TopSellers[i], d.TopSellers[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(d.TopSellers) > dashboardTop {
		d.TopSellers = d.TopSellers[:dashboardTop]
	}
	return d
}
