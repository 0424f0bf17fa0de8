package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/riskibarqy/matchcenter/internal/config"
	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	cacherepo "github.com/riskibarqy/matchcenter/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/leveldb"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchcenter/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchcenter/internal/live"
	"github.com/riskibarqy/matchcenter/internal/platform/apiclient"
	"github.com/riskibarqy/matchcenter/internal/platform/cache"
	"github.com/riskibarqy/matchcenter/internal/platform/database"
	"github.com/riskibarqy/matchcenter/internal/platform/id"
	"github.com/riskibarqy/matchcenter/internal/platform/logging"
	"github.com/riskibarqy/matchcenter/internal/usecase"
	"github.com/riskibarqy/matchcenter/internal/viewstate"
)

// App owns the HTTP server and everything that must be released after it stops.
type App struct {
	Server *http.Server
	Poller *live.Poller

	logger  *logging.Logger
	cancel  context.CancelFunc
	closers []func() error
}

// New wires the data client, the live poller and the preference backend behind the
// HTTP API. The caller must call Close once the server has stopped.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a := &App{logger: logger, cancel: cancel}

	responseCache := cache.NewManager(cfg.CacheTTL.Fixtures)
	responseCache.StartJanitor(bgCtx, cfg.CacheJanitorInterval)

	client := apiclient.New(apiclient.Config{
		BaseURL:            cfg.APIBaseURL,
		APIKey:             cfg.APIKey,
		Timeout:            cfg.APITimeout,
		DefaultCacheTTL:    cfg.CacheTTL.Fixtures,
		EnableLogging:      cfg.EnableLogging,
		PerformanceLogging: func() bool { return cfg.FeatureEnabled(config.FeaturePerformanceLogging) },
		RateLimit:          cfg.ClientRateLimit,
		RateBurst:          cfg.ClientRateBurst,
		CircuitBreaker:     cfg.CircuitBreaker,
	}, responseCache,
		apiclient.WithTransport(newTransport(cfg.HTTPTransport)),
		apiclient.WithLogger(logger.With("component", "apiclient")),
		apiclient.WithRequestIDGenerator(id.Func(id.NewUUIDGenerator())),
	)

	var mockSource usecase.MockSource
	if cfg.UseMockData {
		mockSource = memory.NewMockSource(memory.MockSourceOptions{
			Seed:        cfg.MockSeed,
			Delay:       cfg.MockDelay,
			FailureRate: cfg.MockFailureRate,
		})
	}
	football := usecase.NewFootballService(client, mockSource, usecase.FootballServiceOptions{
		UseMockData: cfg.UseMockData,
		TTL:         cfg.TTLFor,
		Logger:      logger,
	})

	visibility := live.NewManualSignal(true)
	a.Poller = live.NewPoller(live.ServiceFetcher(football, nil), live.Config{
		Interval:   cfg.LivePollInterval,
		Enabled:    func() bool { return cfg.FeatureEnabled(config.FeatureRealTimeUpdates) },
		Visibility: visibility,
		Logger:     logger,
	})
	a.closers = append(a.closers, func() error {
		a.Poller.Close()
		return nil
	})

	prefs, err := a.openPreferences(ctx, cfg, bgCtx)
	if err != nil {
		a.Close()
		return nil, err
	}
	favorites := viewstate.NewFavorites(ctx, prefs, logger)

	handler := httpapi.NewHandler(football, a.Poller, visibility, client, responseCache, prefs, favorites, cfg, logger)
	router := httpapi.NewRouter(handler, logger, cfg.ServiceName, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.AdminToken)

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return bgCtx },
	}

	logger.Info("app wired",
		"mock_data", cfg.UseMockData,
		"transport", cfg.HTTPTransport,
		"preference_backend", cfg.PreferenceBackend,
		"realtime", cfg.FeatureEnabled(config.FeatureRealTimeUpdates),
	)
	return a, nil
}

func newTransport(kind string) apiclient.Transport {
	if kind == config.TransportFastHTTP {
		return apiclient.NewFastHTTPTransport(nil)
	}
	return apiclient.NewHTTPTransport(nil)
}

// openPreferences picks the backend and fronts it with a read-through cache.
func (a *App) openPreferences(ctx context.Context, cfg config.Config, bgCtx context.Context) (preference.Store, error) {
	var store preference.Store
	switch cfg.PreferenceBackend {
	case config.PreferenceLevelDB:
		db, err := leveldb.OpenPreferenceStore(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		store = db
	case config.PreferencePostgres:
		db, err := database.Open(ctx, database.Options{
			URL:                         cfg.DBURL,
			DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		store = postgres.NewPreferenceRepository(db)
	default:
		store = memory.NewPreferenceStore()
	}

	prefCache := cache.NewManager(cfg.PreferenceCacheTTL)
	prefCache.StartJanitor(bgCtx, cfg.CacheJanitorInterval)
	return cacherepo.NewPreferenceRepository(store, prefCache, cfg.PreferenceCacheTTL), nil
}

// Close stops the poller and background sweeps and releases the preference backend.
// Errors are joined.
func (a *App) Close() error {
	a.cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("app close failed", "error", err)
		return err
	}
	return nil
}
