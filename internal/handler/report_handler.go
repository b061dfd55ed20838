package handler

import (
	"bytes"
	"net/http"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/report"
	"github.com/tjmpn2/merchbooth/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /reports/*.xlsx（MANAGER限定）
type ReportHandler struct {
	transactions *usecase.TransactionUsecase
	products     *usecase.ProductUsecase
	settlements  *usecase.SettlementUsecase
}

func NewReportHandler(transactions *usecase.TransactionUsecase, products *usecase.ProductUsecase, settlements *usecase.SettlementUsecase) *ReportHandler {
	return &ReportHandler{transactions: transactions, products: products, settlements: settlements}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	r := e.Group("/reports", g.Manager...)

	r.GET("/transactions.xlsx", h.transactionsReport)
	r.GET("/inventory.xlsx", h.inventoryReport)
	r.GET("/settlements.xlsx", h.settlementsReport)
}

// 書き込み途中で失敗してもステータスを返せるよう一度バッファする
func sendWorkbook(c echo.Context, filename string, write func(buf *bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")
	c.Response().Header().Set("Expires", "0")
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}

func (h *ReportHandler) transactionsReport(c echo.Context) error {
	f, msg := parseTransactionFilter(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	txs, err := h.transactions.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return sendWorkbook(c, "transactions.xlsx", func(buf *bytes.Buffer) error {
		return report.Transactions(buf, txs)
	})
}

func (h *ReportHandler) inventoryReport(c echo.Context) error {
	sum, err := h.products.Inventory(c.Request().Context(), usecase.ListProductsInput{
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}

	products := make([]model.Product, 0, len(sum.Products))
	for _, row := range sum.Products {
		products = append(products, row.Product)
	}
	return sendWorkbook(c, "inventory.xlsx", func(buf *bytes.Buffer) error {
		return report.Inventory(buf, products, sum.LowStockLimit)
	})
}

func (h *ReportHandler) settlementsReport(c echo.Context) error {
	out, err := h.settlements.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return sendWorkbook(c, "settlements.xlsx", func(buf *bytes.Buffer) error {
		return report.Settlements(buf, out.Items)
	})
}
