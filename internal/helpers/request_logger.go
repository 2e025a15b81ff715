package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("component", "http").
		Logger().
		Level(zerolog.InfoLevel)
}

const (
	maxRequestBody = 1000
	maxErrorBody   = 500
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.statusCode == 0 {
		lrw.statusCode = http.StatusOK
	}
	lrw.body.Write(b)
	return lrw.ResponseWriter.Write(b)
}

// requestFields are body keys copied into the log line when present.
var requestFields = []string{"booking_id", "draft_id", "court_id", "voucher_code", "code", "method"}

func extractBusinessFields(body []byte) map[string]string {
	fields := make(map[string]string)

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return fields
	}

	for _, key := range requestFields {
		if v, ok := data[key].(string); ok && v != "" {
			fields[key] = v
		}
	}
	if code, ok := fields["code"]; ok {
		delete(fields, "code")
		fields["voucher_code"] = code
	}
	if method, ok := fields["method"]; ok {
		delete(fields, "method")
		fields["payment_method"] = method
	}
	return fields
}

func extractResponseFields(body []byte) map[string]string {
	fields := make(map[string]string)

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return fields
	}

	if id, ok := data["id"].(string); ok && id != "" {
		// Invoices carry a booking_id, drafts carry expires_at.
		if _, isInvoice := data["booking_id"]; isInvoice {
			fields["invoice_id"] = id
		} else if _, isDraft := data["expires_at"]; isDraft {
			fields["draft_id"] = id
		}
	}
	if userID, ok := data["user_id"].(string); ok && userID != "" {
		fields["user_id"] = userID
	}
	if status, ok := data["status"].(string); ok && status != "" {
		fields["invoice_status"] = status
	}
	if quote, ok := data["quote"].(map[string]any); ok {
		if final, ok := quote["final_amount"].(float64); ok {
			fields["final_amount"] = strconv.FormatFloat(final, 'f', -1, 64)
		}
	}
	if rejection, ok := data["voucher_rejection"].(map[string]any); ok {
		if code, ok := rejection["code"].(string); ok {
			fields["voucher_rejection"] = code
		}
	}
	return fields
}

// pathIDs pulls draft and invoice ids out of the URL. The router has not
// matched yet when this middleware runs, so chi URL params are empty here.
func pathIDs(path string) map[string]string {
	ids := make(map[string]string)
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		switch parts[i] {
		case "drafts":
			ids["draft_id"] = parts[i+1]
		case "invoices":
			ids["invoice_id"] = parts[i+1]
		}
	}
	return ids
}

func RequestLoggerWithBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := middleware.GetReqID(r.Context())

		logEvent := logger.Info().
			Str("event", "request_start").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent())

		if requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		if r.URL.RawQuery != "" {
			logEvent = logEvent.Str("query", r.URL.RawQuery)
		}

		ids := pathIDs(r.URL.Path)
		for k, v := range ids {
			logEvent = logEvent.Str(k, v)
		}

		var requestFields map[string]string
		if r.Body != nil {
			bodyBytes, err := io.ReadAll(r.Body)
			if err == nil && len(bodyBytes) > 0 {
				requestFields = extractBusinessFields(bodyBytes)
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

				for k, v := range requestFields {
					logEvent = logEvent.Str(k, v)
				}

				requestBodyStr := string(bodyBytes)
				if len(requestBodyStr) > maxRequestBody {
					requestBodyStr = requestBodyStr[:maxRequestBody] + "...(truncated)"
				}
				logEvent = logEvent.Str("request_body", requestBodyStr)
			}
		}

		logEvent.Msg("HTTP request started")

		lrw := &loggingResponseWriter{ResponseWriter: w}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)

		logEvent = logger.Info().
			Str("event", "request_complete").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status_code", lrw.statusCode).
			Float64("duration_ms", float64(duration.Nanoseconds())/1e6).
			Str("remote_addr", r.RemoteAddr)

		if requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		for k, v := range ids {
			logEvent = logEvent.Str(k, v)
		}
		for k, v := range requestFields {
			logEvent = logEvent.Str(k, v)
		}
		for k, v := range extractResponseFields(lrw.body.Bytes()) {
			logEvent = logEvent.Str(k, v)
		}

		if lrw.statusCode >= 400 {
			logEvent = logEvent.Int("error_code", lrw.statusCode)

			respBody := lrw.body.String()
			if len(respBody) > maxErrorBody {
				respBody = respBody[:maxErrorBody] + "...(truncated)"
			}
			if respBody != "" {
				logEvent = logEvent.Str("error_response", respBody)
			}
		}

		switch {
		case lrw.statusCode >= 500:
			logEvent.Msg("HTTP request failed")
		case lrw.statusCode >= 400:
			logEvent.Msg("HTTP request client error")
		default:
			logEvent.Msg("HTTP request completed")
		}
	})
}
