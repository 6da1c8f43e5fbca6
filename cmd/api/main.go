package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-lotes-api/internal/application/inventory"
	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
	"github.com/jhoicas/ventas-lotes-api/internal/application/usecase"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
	"github.com/jhoicas/ventas-lotes-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/ventas-lotes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-lotes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-lotes-api/internal/infrastructure/report"
	httpRouter "github.com/jhoicas/ventas-lotes-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-lotes-api/pkg/config"
	"github.com/jhoicas/ventas-lotes-api/pkg/idempotency"
	"github.com/jhoicas/ventas-lotes-api/pkg/logger"
	"github.com/jhoicas/ventas-lotes-api/pkg/metrics"
)

// txRunner agrupa las dos formas de transacción que usan los casos de uso.
type txRunner interface {
	inventory.TxRunner
	sales.SalesTxRunner
}

type repos struct {
	products repository.ProductRepository
	lots     repository.LotRepository
	exits    repository.ExitRepository
	sales    repository.SaleRepository
	clients  repository.ClientRepository
	tx       txRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var r repos
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		// sin gestión de clientes en memoria: se deja el cliente de mostrador
		store.AddClient(entity.Client{ID: "mostrador", Name: "Cliente de mostrador", CreatedAt: time.Now()})
		r = repos{
			products: store.Products(), lots: store.Lots(), exits: store.Exits(),
			sales: store.Sales(), clients: store.Clients(), tx: store,
		}
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		r = repos{
			products: postgres.NewProductRepository(pool),
			lots:     postgres.NewLotRepository(pool),
			exits:    postgres.NewExitRepository(pool),
			sales:    postgres.NewSaleRepository(pool),
			clients:  postgres.NewClientRepository(pool),
			tx:       postgres.NewTxRunner(pool),
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	var idemStore idempotency.Store = idempotency.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible; idempotencia en memoria")
		} else {
			idemStore = idempotency.NewRedisStore(rdb)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia en Redis")
		}
	}

	ledger := inventory.NewLotLedger(r.products, r.lots, m)
	exitRecorder := inventory.NewExitRecorder(r.tx, r.products, m)
	productUC := usecase.NewProductUseCase(r.products, r.lots, r.exits, r.sales, r.clients)
	saleUC := sales.NewSaleUseCase(r.tx, ledger, r.sales, r.clients, m)
	settlementUC := sales.NewSettlementUseCase(r.tx, m)

	// PDF: recibo de venta; Excel: reporte por rango de fechas
	documentUC := sales.NewDocumentUseCase(
		r.sales, r.clients, r.products,
		infrapdf.NewReceiptGenerator(cfg.App.Name), report.NewExcelExporter(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      productUC,
		LotLedger:      ledger,
		ExitRecorder:   exitRecorder,
		SaleUC:         saleUC,
		SettlementUC:   settlementUC,
		DocumentUC:     documentUC,
		Idempotency:    idemStore,
		IdempotencyTTL: cfg.Idempotency.TTL,
		Metrics:        m,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
