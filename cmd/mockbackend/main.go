// Command mockbackend is an in-memory stand-in for the facility backend
// REST API, for running the booking service locally.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"shuttlesync/internal/external"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "mockbackend").Logger()

type Server struct {
	storage *Storage
}

func NewServer(dataDir string, loc *time.Location) (*Server, error) {
	storage := NewStorage(loc)
	if err := storage.LoadFromJSONFiles(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return &Server{storage: storage}, nil
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Route("/api/customer", func(r chi.Router) {
		r.Get("/services", s.GetServices)
		r.Get("/vouchers/search", s.SearchVouchers)
		r.Get("/courts/{courtId}/price", s.GetSlotPrice)
		r.Post("/bookings", s.PostBooking)
		r.Post("/invoices/{invoiceId}/payments", s.PostPayment)
	})
	r.Post("/api/admin/bookings/{bookingId}/cancel", s.PostCancel)
}

func (s *Server) GetServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.storage.Services())
}

func (s *Server) SearchVouchers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.storage.SearchVouchers(r.URL.Query().Get("q")))
}

func (s *Server) GetSlotPrice(w http.ResponseWriter, r *http.Request) {
	start, err1 := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	end, err2 := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		http.Error(w, "start and end must be RFC 3339 timestamps", http.StatusBadRequest)
		return
	}
	price, err := s.storage.SlotPrice(chi.URLParam(r, "courtId"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

func (s *Server) PostBooking(w http.ResponseWriter, r *http.Request) {
	var req external.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	inv, err := s.storage.CreateBooking(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Info().
		Str("event", "booking_created").
		Str("reference", req.Reference).
		Str("booking_id", inv.BookingID).
		Str("final_amount", inv.FinalAmount.String()).
		Msg("Booking created")
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) PostPayment(w http.ResponseWriter, r *http.Request) {
	var req external.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.storage.Pay(chi.URLParam(r, "invoiceId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) PostCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Cancel(chi.URLParam(r, "bookingId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, errBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	viper.SetDefault("PORT", "8081")
	viper.SetDefault("MOCK_DATA_DIR", "cmd/mockbackend/data")
	viper.SetDefault("TIMEZONE", "Asia/Ho_Chi_Minh")
	viper.AutomaticEnv()

	loc, err := time.LoadLocation(viper.GetString("TIMEZONE"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid timezone")
	}

	server, err := NewServer(viper.GetString("MOCK_DATA_DIR"), loc)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize server")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer)
	server.Routes(router)

	addr := ":" + viper.GetString("PORT")
	logger.Info().Str("addr", addr).Msg("Mock backend starting")
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
