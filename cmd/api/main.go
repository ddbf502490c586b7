package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/studio-ops/internal/application/billing"
	"github.com/tu-usuario/studio-ops/internal/application/quotes"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/repository"
	"github.com/tu-usuario/studio-ops/internal/infrastructure/exchangerate"
	infrapdf "github.com/tu-usuario/studio-ops/internal/infrastructure/pdf"
	"github.com/tu-usuario/studio-ops/internal/infrastructure/postgres"
	"github.com/tu-usuario/studio-ops/internal/store"
	httpRouter "github.com/tu-usuario/studio-ops/internal/interfaces/http"
	"github.com/tu-usuario/studio-ops/pkg/config"
	"github.com/tu-usuario/studio-ops/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// El almacén en memoria es autoritativo; PostgreSQL es sincronización
	// best-effort. Sin base de datos la aplicación sigue funcionando.
	var (
		quoteRepo   repository.QuoteRepository
		invoiceRepo repository.InvoiceRepository
		txRunner    billing.InvoiceTxRunner
	)
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL no disponible, continuando sin persistencia remota")
	} else {
		defer pool.Close()
		quoteRepo = postgres.NewQuoteRepository(pool)
		invoiceRepo = postgres.NewInvoiceRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	ratesClient := exchangerate.NewClient(cfg.Rates.APIURL, cfg.Rates.RequestTimeout)
	rateProvider := rates.NewProvider(ratesClient, cfg.Rates.CacheTTL, log)

	quoteStore := store.New[*entity.Quote]()
	invoiceStore := store.New[*entity.Invoice]()

	quoteUC := quotes.NewUseCase(quoteStore, quoteRepo, log, cfg.Numbering.QuotePrefix)
	invoiceUC := billing.NewInvoiceUseCase(
		invoiceStore, invoiceRepo, txRunner, rateProvider, quoteUC, log,
		cfg.Numbering.InvoicePrefix,
	)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		QuoteUC:      quoteUC,
		InvoiceUC:    invoiceUC,
		RateProvider: rateProvider,
		InvoicePDF:   pdfGenerator,
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
