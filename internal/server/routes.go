package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tjmpn2/merchbooth/internal/handler"
	"github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/usecase"
	auth "github.com/tjmpn2/merchbooth/internal/usecase/auth_usecase"
)

// Deps is everything the routes need, built in main.
type Deps struct {
	JWTSecret string
	Operators repository.OperatorRepository

	Login        *auth.LoginUsecase
	Products     *usecase.ProductUsecase
	Register     *usecase.RegisterUsecase
	Transactions *usecase.TransactionUsecase
	Events       *usecase.EventUsecase
	Settlements  *usecase.SettlementUsecase
	Dashboard    *usecase.DashboardUsecase
	AuditLogs    *usecase.AuditLogUsecase

	//websocket hub（nil可）
	Live http.Handler
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	g := handler.NewGuards(d.JWTSecret, d.Operators)

	handler.NewAuthHandler(d.Login).RegisterRoutes(e)
	handler.NewProductHandler(d.Products).RegisterRoutes(e, g)
	handler.NewAdminProductHandler(d.Products).RegisterRoutes(e, g)
	handler.NewRegisterHandler(d.Register).RegisterRoutes(e, g)
	handler.NewTransactionHandler(d.Transactions).RegisterRoutes(e, g)
	handler.NewAdminTransactionHandler(d.Transactions).RegisterRoutes(e, g)
	handler.NewReferenceHandler(d.Events, d.Settlements, d.Dashboard).RegisterRoutes(e, g)
	handler.NewAdminAuditLogHandler(d.AuditLogs).RegisterRoutes(e, g)
	handler.NewReportHandler(d.Transactions, d.Products, d.Settlements).RegisterRoutes(e, g)
	handler.NewSystemHandler(d.Live).RegisterRoutes(e, g)
}
