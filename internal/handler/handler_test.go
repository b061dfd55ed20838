package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjmpn2/merchbooth/internal/middleware"
	"github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/usecase"
	auth "github.com/tjmpn2/merchbooth/internal/usecase/auth_usecase"
	"github.com/tjmpn2/merchbooth/internal/validator"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"http error", usecase.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot, "teapot"},
		{"declined", &usecase.PaymentError{Reason: "card declined"}, http.StatusPaymentRequired, "payment failed: card declined"},
		{"empty cart", usecase.ErrEmptyCart, http.StatusBadRequest, "cart is empty"},
		{"unknown variant", usecase.ErrUnknownVariant, http.StatusBadRequest, "unknown variant"},
		{"in progress", usecase.ErrCheckoutInProgress, http.StatusConflict, "checkout already in progress"},
		//wrapされていても判定できる
		{"insufficient stock wrapped", fmt.Errorf("line 1: %w", usecase.ErrInsufficientStock), http.StatusConflict, "line 1: insufficient stock"},
		{"out of stock", usecase.ErrOutOfStock, http.StatusConflict, "out of stock"},
		{"not found", repository.ErrNotFound, http.StatusNotFound, "not found"},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"inactive", auth.ErrOperatorInactive, http.StatusForbidden, "operator is inactive"},
		{"invalid input", validator.ErrInvalidInput, http.StatusBadRequest, "invalid input"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.wantCode, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMsg, body.Error)
		})
	}
}

func TestGetOperatorIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := getOperatorIDFromContext(c)
	assert.False(t, ok)

	c.Set(middleware.CtxOperatorIDKey, int64(0))
	_, ok = getOperatorIDFromContext(c)
	assert.False(t, ok)

	c.Set(middleware.CtxOperatorIDKey, int64(7))
	id, ok := getOperatorIDFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestParseIDParam(t *testing.T) {
	e := echo.New()
	for raw, want := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		_, ok := parseIDParam(c, "id")
		assert.Equal(t, want, ok, raw)
	}
}

func TestParseTransactionFilter(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/transactions?event_id=2&status=refunded&from=2026-01-01T00:00:00Z&limit=5", nil), httptest.NewRecorder())
	f, msg := parseTransactionFilter(c)
	require.Empty(t, msg)
	require.NotNil(t, f.EventID)
	assert.Equal(t, int64(2), *f.EventID)
	assert.Equal(t, "REFUNDED", string(f.Status))
	require.NotNil(t, f.From)
	assert.Nil(t, f.To)
	assert.Equal(t, 5, f.Limit)

	for _, q := range []string{"event_id=x", "from=yesterday", "to=2026-13-01", "limit=-"} {
		c = e.NewContext(httptest.NewRequest(http.MethodGet, "/transactions?"+q, nil), httptest.NewRecorder())
		_, msg = parseTransactionFilter(c)
		assert.NotEmpty(t, msg, q)
	}
}

func TestParseAuditLogFilter(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/audit-logs?actor_operator_id=3&action=sale&resource_type=Transaction&resource_id=sq_1&to=2026-02-01T00:00:00Z&limit=10&offset=20", nil), httptest.NewRecorder())
	f, msg := parseAuditLogFilter(c)
	require.Empty(t, msg)
	require.NotNil(t, f.ActorOperatorID)
	assert.Equal(t, int64(3), *f.ActorOperatorID)
	require.NotNil(t, f.Action)
	assert.Equal(t, "SALE", string(*f.Action))
	require.NotNil(t, f.ResourceType)
	assert.Equal(t, "transaction", string(*f.ResourceType))
	require.NotNil(t, f.ResourceID)
	assert.Equal(t, "sq_1", *f.ResourceID)
	assert.Nil(t, f.CreatedFrom)
	require.NotNil(t, f.CreatedTo)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset)

	for _, q := range []string{"actor_operator_id=x", "from=today", "to=2026-13-01", "limit=ten", "offset=-"} {
		c = e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/audit-logs?"+q, nil), httptest.NewRecorder())
		_, msg = parseAuditLogFilter(c)
		assert.NotEmpty(t, msg, q)
	}
}
