package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"balanced.io/internal/application/usecase"
	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
	"balanced.io/internal/infrastructure/logger"
)

// Handler holds HTTP handlers and their dependencies
type Handler[K entity.Key] struct {
	scheme          entity.KeyScheme[K]
	registerUseCase *usecase.RegisterAccountUseCase[K]
	balanceUseCase  *usecase.GetBalanceUseCase[K]
	mutateUseCase   *usecase.MutateBalanceUseCase[K]
	validator       port.RequestValidator
	gatherer        prometheus.Gatherer
	corsOrigins     []string
	logger          logger.Logger
}

// Option configures optional Handler collaborators.
type Option[K entity.Key] func(*Handler[K])

// WithValidator requires signed POST requests.
func WithValidator[K entity.Key](v port.RequestValidator) Option[K] {
	return func(h *Handler[K]) { h.validator = v }
}

// WithMetrics exposes g on /metrics.
func WithMetrics[K entity.Key](g prometheus.Gatherer) Option[K] {
	return func(h *Handler[K]) { h.gatherer = g }
}

// WithCORS allows cross-origin calls from origins.
func WithCORS[K entity.Key](origins []string) Option[K] {
	return func(h *Handler[K]) { h.corsOrigins = origins }
}

// NewHandler creates a new HTTP handler
func NewHandler[K entity.Key](
	scheme entity.KeyScheme[K],
	registerUseCase *usecase.RegisterAccountUseCase[K],
	balanceUseCase *usecase.GetBalanceUseCase[K],
	mutateUseCase *usecase.MutateBalanceUseCase[K],
	logger logger.Logger,
	opts ...Option[K],
) *Handler[K] {
	h := &Handler[K]{
		scheme:          scheme,
		registerUseCase: registerUseCase,
		balanceUseCase:  balanceUseCase,
		mutateUseCase:   mutateUseCase,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleRegister handles POST /v1/accounts requests
func (h *Handler[K]) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFromContext(ctx, h.logger)

	var req entity.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	key, err := h.scheme.Key(req.Account, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.registerUseCase.Execute(ctx, key)
	if err != nil {
		requestLogger.LogError(ctx, "Failed to register account", err, "account", key.StorageKey())
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Status == entity.RegisterStatusCreated {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, resp); err != nil {
		requestLogger.LogError(ctx, "Failed to encode register response", err)
		return
	}

	requestLogger.LogInfo(ctx, "Account registered",
		"account", key.StorageKey(),
		"status", resp.Status)
}

// HandleBalance handles GET /v1/balances/{account} requests
func (h *Handler[K]) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFromContext(ctx, h.logger)

	key, err := h.scheme.Key(chi.URLParam(r, "account"), r.URL.Query().Get("currency"))
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.balanceUseCase.Execute(ctx, key)
	if err != nil {
		requestLogger.LogWarning(ctx, "Failed to get balance",
			"account", key.StorageKey(),
			"error", err.Error())
		writeError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, balance); err != nil {
		requestLogger.LogError(ctx, "Failed to encode balance response", err)
	}
}

// HandleMutation handles POST /v1/balances/{operation} requests
func (h *Handler[K]) HandleMutation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFromContext(ctx, h.logger)

	op, err := entity.ParseOperation(chi.URLParam(r, "operation"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req entity.MutationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	key, err := h.scheme.Key(req.Account, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	value, err := req.Amount()
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.mutateUseCase.Execute(ctx, usecase.MutateBalanceRequest[K]{
		Key:       key,
		Operation: op,
		Value:     value,
	})
	if err != nil {
		requestLogger.LogWarning(ctx, "Balance operation rejected",
			"operation", op.String(),
			"account", key.StorageKey(),
			"value", value,
			"error", err.Error())
		writeError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, balance); err != nil {
		requestLogger.LogError(ctx, "Failed to encode balance response", err)
		return
	}

	requestLogger.LogInfo(ctx, "Balance operation applied",
		"operation", op.String(),
		"account", key.StorageKey(),
		"value", value,
		"free", balance.Free,
		"lock", balance.Lock)
}

// HandleHealth handles GET /health requests
func (h *Handler[K]) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": h.scheme.Mode()})
}

// SetupRoutes sets up all HTTP routes
func (h *Handler[K]) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware(h.logger))
	r.Use(LoggingMiddleware(h.logger))
	if len(h.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Timestamp", "X-Nonce", "X-Signature"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.HandleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/balances/{account}", h.HandleBalance)

		r.Group(func(r chi.Router) {
			if h.validator != nil {
				r.Use(SignatureMiddleware(h.validator, h.logger))
			}
			r.Post("/accounts", h.HandleRegister)
			r.Post("/balances/{operation}", h.HandleMutation)
		})
	})

	return r
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}
