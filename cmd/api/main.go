package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/tjmpn2/merchbooth/internal/config"
	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/infra/broker"
	"github.com/tjmpn2/merchbooth/internal/infra/cache"
	"github.com/tjmpn2/merchbooth/internal/infra/db"
	"github.com/tjmpn2/merchbooth/internal/infra/memory"
	infraRepo "github.com/tjmpn2/merchbooth/internal/infra/repository"
	"github.com/tjmpn2/merchbooth/internal/live"
	"github.com/tjmpn2/merchbooth/internal/obs"
	"github.com/tjmpn2/merchbooth/internal/payment"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/seed"
	"github.com/tjmpn2/merchbooth/internal/server"
	"github.com/tjmpn2/merchbooth/internal/usecase"
	auth "github.com/tjmpn2/merchbooth/internal/usecase/auth_usecase"
	"github.com/tjmpn2/merchbooth/internal/validator"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(operatorID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  operatorID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 保存先ごとのrepository
type stores struct {
	products     repo.ProductRepository
	transactions repo.TransactionRepository
	events       repo.EventRepository
	settlements  repo.SettlementRepository
	operators    repo.OperatorRepository
	auditLogs    repo.AuditLogRepository
	tx           repo.TransactionManager
	close        func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	events := seed.Events()
	settlements := seed.Settlements(cfg.ArtistShare)

	if cfg.StoreDriver == config.StoreMemory {
		st := memory.NewStore()
		if err := seed.Catalogue(ctx, st.Products()); err != nil {
			return stores{}, err
		}
		st.LoadReference(events, settlements)
		return stores{
			products:     st.Products(),
			transactions: st.Transactions(),
			events:       st.Events(),
			settlements:  st.Settlements(),
			operators:    st.Operators(),
			auditLogs:    st.AuditLogs(),
			tx:           st,
			close:        func() {},
		}, nil
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return stores{}, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return stores{}, err
	}
	if err := db.SeedReference(gormDB, events, settlements); err != nil {
		return stores{}, err
	}
	products := infraRepo.NewProductGormRepository(gormDB)
	if err := seed.Catalogue(ctx, products); err != nil {
		return stores{}, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return stores{}, err
	}
	return stores{
		products:     products,
		transactions: infraRepo.NewTransactionGormRepository(gormDB),
		events:       infraRepo.NewEventGormRepository(gormDB),
		settlements:  infraRepo.NewSettlementGormRepository(gormDB),
		operators:    infraRepo.NewOperatorGormRepository(gormDB),
		auditLogs:    infraRepo.NewAuditLogGormRepository(gormDB),
		tx:           infraRepo.NewTxManagerGorm(gormDB),
		close:        func() { _ = sqlDB.Close() },
	}, nil
}

func main() {
	//.envは無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	obs.InitLogger(cfg.GoEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		obs.Logger.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	//オペレーター登録
	v := validator.NewLoginValidator()
	created, err := auth.ProvisionOperators(ctx, st.operators, v, auth.NewBcryptPINHasher(bcrypt.DefaultCost), cfg.Operators)
	if err != nil {
		obs.Logger.Error("operator provisioning failed", "err", err)
		os.Exit(1)
	}
	obs.Logger.Info("operators ready", "created", created, "configured", len(cfg.Operators))

	//決済の冪等キャッシュ
	var idem payment.IdempotencyStore = payment.NewMemoryIdempotencyStore(payment.DefaultRecordTTL)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTLS)
		if err != nil {
			obs.Logger.Error("redis unavailable", "err", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		idem = cache.NewRedisIdempotencyStore(rdb, payment.DefaultRecordTTL)
	}
	gateway := payment.NewGuardedGateway(payment.NewMockGateway(cfg.PaymentDelay), idem, cfg.PaymentTimeout)

	var publisher usecase.SalePublisher
	if cfg.RabbitMQURL != "" {
		pub, err := broker.NewRabbitPublisher(cfg.RabbitMQURL)
		if err != nil {
			obs.Logger.Error("rabbitmq unavailable", "err", err)
			os.Exit(1)
		}
		defer func() { _ = pub.Close() }()
		publisher = pub
	}

	hub := live.NewHub()
	go hub.Run(ctx)

	//Usecase生成
	issuer := &jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: cfg.AccessTTL}
	loginUC := auth.NewLoginUsecase(st.operators, v, auth.NewBcryptPINVerifier(), issuer, &realClock{})

	deps := server.Deps{
		JWTSecret: cfg.JWTSecret,
		Operators: st.operators,
		Login:     loginUC,
		Products:  usecase.NewProductUsecase(st.products, st.tx, cfg.LowStockThreshold),
		Register: usecase.NewRegisterUsecase(usecase.RegisterDeps{
			Products:     st.products,
			Events:       st.events,
			Transactions: st.transactions,
			Tx:           st.tx,
			Gateway:      gateway,
			IDGen:        &uuidGenerator{},
			Publisher:    publisher,
			Notifier:     hub,
			TaxRate:      cfg.TaxRate,
		}),
		Transactions: usecase.NewTransactionUsecase(st.transactions, st.tx, gateway, publisher, hub),
		Events:       usecase.NewEventUsecase(st.events),
		Settlements:  usecase.NewSettlementUsecase(st.settlements, cfg.ArtistShare),
		Dashboard:    usecase.NewDashboardUsecase(st.transactions, st.events),
		AuditLogs:    usecase.NewAuditLogUsecase(st.auditLogs),
		Live:         hub,
	}

	//Server起動
	e := server.New(deps)
	if err := server.Start(ctx, e, cfg.Addr(), cfg.ShutdownTimeout); err != nil {
		obs.Logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
