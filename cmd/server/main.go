package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shuttlesync/api"
	"shuttlesync/internal/config"
	"shuttlesync/internal/domain/bookings"
	"shuttlesync/internal/domain/catalog"
	"shuttlesync/internal/domain/drafts"
	"shuttlesync/internal/domain/quotes"
	"shuttlesync/internal/domain/vouchers"
	"shuttlesync/internal/external"
	"shuttlesync/internal/handler"
	"shuttlesync/internal/helpers"
	"shuttlesync/internal/jobs"
	"shuttlesync/internal/messaging/rabbitmq"
	"shuttlesync/internal/session"
	"shuttlesync/internal/storage/postgres"
	"shuttlesync/internal/storage/redis"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

type Server struct {
	draftsHandler   *handler.DraftsHandler
	bookingsHandler *handler.BookingsHandler
	catalogHandler  *handler.CatalogHandler
}

var _ api.ServerInterface = (*Server)(nil)

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) GetServices(w http.ResponseWriter, r *http.Request) {
	s.catalogHandler.GetServices(w, r)
}

func (s *Server) GetVouchers(w http.ResponseWriter, r *http.Request, params api.GetVouchersParams) {
	s.catalogHandler.GetVouchers(w, r, params)
}

func (s *Server) PostQuotes(w http.ResponseWriter, r *http.Request) {
	s.catalogHandler.PostQuotes(w, r)
}

func (s *Server) PostDrafts(w http.ResponseWriter, r *http.Request) {
	s.draftsHandler.PostDrafts(w, r)
}

func (s *Server) GetDraftsDraftId(w http.ResponseWriter, r *http.Request, draftId string) {
	s.draftsHandler.GetDraftsDraftId(w, r, draftId)
}

func (s *Server) PutDraftsDraftIdServicesServiceId(w http.ResponseWriter, r *http.Request, draftId string, serviceId string) {
	s.draftsHandler.PutDraftsDraftIdServicesServiceId(w, r, draftId, serviceId)
}

func (s *Server) PutDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request, draftId string) {
	s.draftsHandler.PutDraftsDraftIdVoucher(w, r, draftId)
}

func (s *Server) DeleteDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request, draftId string) {
	s.draftsHandler.DeleteDraftsDraftIdVoucher(w, r, draftId)
}

func (s *Server) PostBookings(w http.ResponseWriter, r *http.Request) {
	s.bookingsHandler.PostBookings(w, r)
}

func (s *Server) GetInvoicesInvoiceId(w http.ResponseWriter, r *http.Request, invoiceId string) {
	s.bookingsHandler.GetInvoicesInvoiceId(w, r, invoiceId)
}

func (s *Server) PostInvoicesInvoiceIdPayments(w http.ResponseWriter, r *http.Request, invoiceId string) {
	s.bookingsHandler.PostInvoicesInvoiceIdPayments(w, r, invoiceId)
}

func (s *Server) PostInvoicesInvoiceIdCancel(w http.ResponseWriter, r *http.Request, invoiceId string) {
	s.bookingsHandler.PostInvoicesInvoiceIdCancel(w, r, invoiceId)
}

func (s *Server) GetAdminInvoices(w http.ResponseWriter, r *http.Request, params api.GetAdminInvoicesParams) {
	s.bookingsHandler.GetAdminInvoices(w, r, params)
}

func main() {
	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}
	logger.Info().Msg("Connected to PostgreSQL database")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis client")
		}
	}()
	logger.Info().Msg("Connected to Redis")

	events := rabbitmq.New(cfg.RabbitMQURL, cfg.EventsExchange)
	defer events.Close()

	backend := external.NewClient(cfg.BackendAPIURL, cfg.BackendAPITimeout)

	invoiceRepo := postgres.NewInvoiceRepository(db)
	invoiceCache := redis.NewInvoiceCache(redisClient)
	draftRepo := redis.NewDraftRepository(redisClient)

	catalogService := catalog.NewService(backend, cfg.CatalogCacheTTL)
	vouchersService := vouchers.NewService(backend, redis.NewVoucherCache(redisClient), cfg.VoucherCacheTTL, loc)
	draftsService := drafts.NewService(draftRepo, backend, catalogService, vouchersService, cfg.DraftTTL, loc)
	quotesService := quotes.NewService(catalogService, vouchersService, loc)
	bookingsService := bookings.NewService(invoiceRepo, draftsService, backend, bookings.Options{
		Cache:    invoiceCache,
		Events:   events,
		CacheTTL: cfg.InvoiceCacheTTL,
	})

	scheduler := jobs.NewScheduler()
	cleanupJob := jobs.NewInvoiceCleanupJob(invoiceRepo, invoiceCache, cfg.InvoiceRetention)
	if err := scheduler.AddAndRunAtStart(cfg.CleanupSchedule, cleanupJob); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("Invalid cleanup schedule")
	}
	scheduler.Start()

	server := &Server{
		draftsHandler:   handler.NewDraftsHandler(draftsService),
		bookingsHandler: handler.NewBookingsHandler(bookingsService),
		catalogHandler:  handler.NewCatalogHandler(catalogService, vouchersService, quotesService),
	}

	swagger, err := api.GetSwagger()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load OpenAPI document")
	}
	validator, err := helpers.OpenAPIValidator(swagger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build request validator")
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		helpers.RequestLoggerWithBody,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins(),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		session.Middleware([]byte(cfg.SessionJWTSecret), "/health"),
		validator,
	)

	addr := fmt.Sprintf(":%s", cfg.Port)

	srv := &http.Server{
		Addr:           addr,
		Handler:        api.HandlerFromMux(server, router),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Booking service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
}
