// Package report renders register data as Excel workbooks.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
	dateLayout  = "2006-01-02"
)

func header(sheet *xlsx.Sheet, cols ...string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetValue(c)
	}
}

func money(row *xlsx.Row, d decimal.Decimal) {
	row.AddCell().SetFloat(d.Round(2).InexactFloat64())
}

// Transactions writes one row per sold line so the sheet can be pivoted.
func Transactions(w io.Writer, txs []model.Transaction) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return err
	}
	header(sheet, "Transaction", "Timestamp", "Event", "Payment", "Status",
		"SKU", "Product", "Variant", "Qty", "Unit Price", "Line Total", "Transaction Total")

	for _, t := range txs {
		event := ""
		if t.EventID != nil {
			event = strconv.FormatInt(*t.EventID, 10)
		}
		for _, l := range t.Lines {
			row := sheet.AddRow()
			row.AddCell().SetValue(t.ID)
			row.AddCell().SetValue(t.Timestamp.UTC().Format(timeLayout))
			row.AddCell().SetValue(event)
			row.AddCell().SetValue(string(t.PaymentMethod))
			row.AddCell().SetValue(string(t.Status))
			row.AddCell().SetValue(l.SKU)
			row.AddCell().SetValue(l.Name)
			row.AddCell().SetValue(l.Variant)
			row.AddCell().SetInt64(l.Quantity)
			money(row, l.UnitPrice)
			money(row, l.Subtotal())
			money(row, t.Total)
		}
	}
	return file.Write(w)
}

// Inventory writes one row per variant with a low-stock flag.
func Inventory(w io.Writer, products []model.Product, lowStock int64) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return err
	}
	header(sheet, "SKU", "Product", "Category", "Variant", "Stock", "Price", "Cost", "Margin %", "Low Stock")

	for _, p := range products {
		for _, v := range p.Variants {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.SKU)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(string(p.Category))
			row.AddCell().SetValue(v)
			row.AddCell().SetInt64(p.StockOf(v))
			money(row, p.Price)
			money(row, p.Cost)
			row.AddCell().SetInt64(p.MarginPercent())
			low := ""
			if p.StockOf(v) < lowStock {
				low = "yes"
			}
			row.AddCell().SetValue(low)
		}
	}
	return file.Write(w)
}

// Settlements writes the payout table.
func Settlements(w io.Writer, rows []model.Settlement) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Settlements")
	if err != nil {
		return err
	}
	header(sheet, "Date", "Venue", "City", "Gross", "Artist Share", "Venue Share", "Status")

	for _, s := range rows {
		row := sheet.AddRow()
		row.AddCell().SetValue(s.Date.Format(dateLayout))
		row.AddCell().SetValue(s.Venue)
		row.AddCell().SetValue(s.City)
		money(row, s.Gross)
		money(row, s.ArtistShare)
		money(row, s.VenueShare)
		row.AddCell().SetValue(strings.ToLower(string(s.Status)))
	}
	return file.Write(w)
}
