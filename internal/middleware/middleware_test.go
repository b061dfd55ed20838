package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

const testSecret = "test-secret"

// =====================
// Mock（OperatorRepository）
// =====================

type MockOperatorRepo struct {
	mock.Mock
}

func (m *MockOperatorRepo) Create(ctx context.Context, op *model.Operator) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockOperatorRepo) FindByID(ctx context.Context, id int64) (*model.Operator, error) {
	args := m.Called(ctx, id)
	op, _ := args.Get(0).(*model.Operator)
	return op, args.Error(1)
}

func (m *MockOperatorRepo) FindByName(ctx context.Context, name string) (*model.Operator, error) {
	args := m.Called(ctx, name)
	op, _ := args.Get(0).(*model.Operator)
	return op, args.Error(1)
}

func (m *MockOperatorRepo) Update(ctx context.Context, op *model.Operator) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

// =====================
// helpers
// =====================

type mwOKResponse struct {
	OperatorID int64  `json:"operator_id"`
	Role       string `json:"role"`
}

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, method jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func runRequest(t *testing.T, e *echo.Echo, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func okHandler(c echo.Context) error {
	id, _ := c.Get(CtxOperatorIDKey).(int64)
	role, _ := c.Get(CtxOperatorRoleKey).(string)
	return c.JSON(http.StatusOK, mwOKResponse{OperatorID: id, Role: role})
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_Unauthorized(t *testing.T) {
	expired := func(t *testing.T) string {
		claims := jwt.MapClaims{"sub": 1, "role": "CASHIER", "exp": time.Now().Add(-time.Minute).Unix()}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return "Bearer " + raw
	}

	cases := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"no header", func(*testing.T) string { return "" }},
		{"bad scheme", func(*testing.T) string { return "Token abc.def.ghi" }},
		{"empty token", func(*testing.T) string { return "Bearer  " }},
		{"bad signature", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "CASHIER", jwt.SigningMethodHS256)
		}},
		//アルゴリズム違い
		{"wrong alg", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, 1, "CASHIER", jwt.SigningMethodHS512)
		}},
		{"expired", expired},
		{"no role", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, 1, "", jwt.SigningMethodHS256)
		}},
		{"zero sub", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, 0, "CASHIER", jwt.SigningMethodHS256)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", okHandler, AuthJWT(testSecret))

			rec := runRequest(t, e, http.MethodGet, "/protected", tc.header(t))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// 正常：ctxに値が入る
func TestAuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", okHandler, AuthJWT(testSecret))

	raw := mustMakeJWT(t, testSecret, 123, "MANAGER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(123), body.OperatorID)
	assert.Equal(t, "MANAGER", body.Role)
}

// =====================
// ManagerRoleGuard
// =====================

func TestManagerRoleGuard(t *testing.T) {
	e := echo.New()
	e.GET("/manager", okHandler, AuthJWT(testSecret), ManagerRoleGuard())

	//CASHIER => 403
	raw := mustMakeJWT(t, testSecret, 1, "CASHIER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/manager", "Bearer "+raw)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "manager only", decodeMWError(t, rec).Error)

	//MANAGER => 200
	raw = mustMakeJWT(t, testSecret, 2, "MANAGER", jwt.SigningMethodHS256)
	rec = runRequest(t, e, http.MethodGet, "/manager", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestManagerRoleGuard_MissingContext(t *testing.T) {
	e := echo.New()
	e.GET("/manager", okHandler, ManagerRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/manager", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// ActiveOperatorGuard
// =====================

func TestActiveOperatorGuard_MissingContext(t *testing.T) {
	e := echo.New()
	repo := new(MockOperatorRepo)
	e.GET("/protected", okHandler, ActiveOperatorGuard(repo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestActiveOperatorGuard(t *testing.T) {
	cases := []struct {
		name     string
		op       *model.Operator
		err      error
		wantCode int
	}{
		{"active", &model.Operator{ID: 1, Name: "cashier", Role: model.RoleCashier, IsActive: true}, nil, http.StatusOK},
		{"inactive", &model.Operator{ID: 1, Name: "cashier", Role: model.RoleCashier, IsActive: false}, nil, http.StatusUnauthorized},
		//トークン発行後にroleが変わった
		{"role changed", &model.Operator{ID: 1, Name: "cashier", Role: model.RoleManager, IsActive: true}, nil, http.StatusUnauthorized},
		{"not found", nil, errors.New("not found"), http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockOperatorRepo)
			repo.On("FindByID", mock.Anything, int64(1)).Return(tc.op, tc.err).Once()

			e := echo.New()
			e.GET("/protected", okHandler, AuthJWT(testSecret), ActiveOperatorGuard(repo))

			raw := mustMakeJWT(t, testSecret, 1, "CASHIER", jwt.SigningMethodHS256)
			rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
			assert.Equal(t, tc.wantCode, rec.Code)
			repo.AssertExpectations(t)
		})
	}
}

// WebSocketだけqueryのaccess_tokenを受け付ける
func TestAuthJWT_WebSocketQueryToken(t *testing.T) {
	e := echo.New()
	e.GET("/live", okHandler, AuthJWT(testSecret))
	raw := mustMakeJWT(t, testSecret, 9, "CASHIER", jwt.SigningMethodHS256)

	req := httptest.NewRequest(http.MethodGet, "/live?access_token="+raw, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	//通常のリクエストでは無視
	rec = runRequest(t, e, http.MethodGet, "/live?access_token="+raw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
