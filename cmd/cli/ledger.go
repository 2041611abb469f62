package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"balanced.io/internal/application/usecase"
	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
	"balanced.io/internal/infrastructure/config"
	httphandler "balanced.io/internal/infrastructure/http"
	"balanced.io/internal/infrastructure/logger"
	"balanced.io/internal/infrastructure/metrics"
	"balanced.io/internal/infrastructure/repository"
)

// ledgerService hides the key type chosen by ledger.mode from the commands.
type ledgerService interface {
	Register(ctx context.Context, account, currency string) (*entity.RegisterResponse, error)
	Balance(ctx context.Context, account, currency string) (*entity.BalanceResponse, error)
	Apply(ctx context.Context, op entity.Operation, account, currency string, value uint64) (*entity.BalanceResponse, error)
	Routes(cfg *config.Config, validator port.RequestValidator, gatherer prometheus.Gatherer) http.Handler
}

type ledger[K entity.Key] struct {
	scheme   entity.KeyScheme[K]
	register *usecase.RegisterAccountUseCase[K]
	balance  *usecase.GetBalanceUseCase[K]
	mutate   *usecase.MutateBalanceUseCase[K]
	logger   logger.Logger
}

// newLedger wires the repository and use cases for mode. m may be nil.
func newLedger(mode string, store port.BalanceStore, log logger.Logger, m *metrics.Metrics) (ledgerService, error) {
	switch mode {
	case entity.ModeSingle:
		return buildLedger[entity.AccountID](entity.SingleCurrency{}, store, log, m), nil
	case entity.ModeMulti:
		return buildLedger[entity.CurrencyAccount](entity.MultiCurrency{}, store, log, m), nil
	default:
		return nil, fmt.Errorf("unknown ledger mode %q", mode)
	}
}

func buildLedger[K entity.Key](scheme entity.KeyScheme[K], store port.BalanceStore, log logger.Logger, m *metrics.Metrics) *ledger[K] {
	var observer port.OperationObserver
	if m != nil {
		observer = m
	}
	repo := repository.NewBalanceRepository[K](store, log.WithComponent("repository"),
		repository.WithCacheObserver(m.SetCachedAccounts))

	return &ledger[K]{
		scheme:   scheme,
		register: usecase.NewRegisterAccountUseCase[K](repo, observer),
		balance:  usecase.NewGetBalanceUseCase[K](repo, observer),
		mutate:   usecase.NewMutateBalanceUseCase[K](repo, observer),
		logger:   log,
	}
}

func (l *ledger[K]) Register(ctx context.Context, account, currency string) (*entity.RegisterResponse, error) {
	key, err := l.scheme.Key(account, currency)
	if err != nil {
		return nil, err
	}
	return l.register.Execute(ctx, key)
}

func (l *ledger[K]) Balance(ctx context.Context, account, currency string) (*entity.BalanceResponse, error) {
	key, err := l.scheme.Key(account, currency)
	if err != nil {
		return nil, err
	}
	return l.balance.Execute(ctx, key)
}

func (l *ledger[K]) Apply(ctx context.Context, op entity.Operation, account, currency string, value uint64) (*entity.BalanceResponse, error) {
	key, err := l.scheme.Key(account, currency)
	if err != nil {
		return nil, err
	}
	return l.mutate.Execute(ctx, usecase.MutateBalanceRequest[K]{Key: key, Operation: op, Value: value})
}

func (l *ledger[K]) Routes(cfg *config.Config, validator port.RequestValidator, gatherer prometheus.Gatherer) http.Handler {
	opts := []httphandler.Option[K]{httphandler.WithCORS[K](cfg.Server.CORSOrigins)}
	if validator != nil {
		opts = append(opts, httphandler.WithValidator[K](validator))
	}
	if gatherer != nil {
		opts = append(opts, httphandler.WithMetrics[K](gatherer))
	}
	return httphandler.NewHandler[K](l.scheme, l.register, l.balance, l.mutate, l.logger.WithComponent("http"), opts...).
		SetupRoutes()
}
