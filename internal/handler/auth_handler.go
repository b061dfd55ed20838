package handler

import (
	"net/http"

	auth "github.com/tjmpn2/merchbooth/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	loginUC *auth.LoginUsecase // ログインusecase
}

// DIコンストラクタ
func NewAuthHandler(loginUC *auth.LoginUsecase) *AuthHandler {
	return &AuthHandler{loginUC: loginUC}
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
}

// LoginはPOST /auth/loginのハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Name: req.Name,
		PIN:  req.PIN,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
