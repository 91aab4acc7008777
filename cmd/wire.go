package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	restledger "github.com/nissmart/dashboard-cli/internal/adapters/ledger/rest"
	"github.com/nissmart/dashboard-cli/internal/adapters/logging"
	promadapter "github.com/nissmart/dashboard-cli/internal/adapters/metrics/prometheus"
	dashboardrender "github.com/nissmart/dashboard-cli/internal/adapters/render/dashboard"
	tomlrepo "github.com/nissmart/dashboard-cli/internal/adapters/repo/toml"
	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/config"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	logCloser   io.Closer
	metrics     *promadapter.Recorder
	ledger      restledger.Client
	fetcher     *application.SnapshotFetcher
	directory   *tomlrepo.UserDirectory
	renderUser  func(application.UserDashboardState, dashboardrender.RenderOptions) (string, error)
	renderAdmin func(application.AdminDashboardState, dashboardrender.RenderOptions) (string, error)
	clock       ports.Clock
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v, config.LoadOptions{
		ConfigFile: envOrDefault("NSD_CONFIG", ""),
		EnvFiles:   []string{".env"},
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	directory, err := tomlrepo.NewUserDirectory(v)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("wire user directory: %w", err)
	}

	clock := ports.SystemClock{}
	ledger := restledger.Client{
		BaseURL:        cfg.API.BaseURL,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: cfg.API.Timeout,
		Clock:          clock,
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		logCloser:   logCloser,
		metrics:     promadapter.New(),
		ledger:      ledger,
		fetcher:     application.NewSnapshotFetcher(ledger, clock, cfg.Admin.ActivityLimit),
		directory:   directory,
		renderUser:  dashboardrender.RenderUser,
		renderAdmin: dashboardrender.RenderAdmin,
		clock:       clock,
	}, nil
}

func (a *app) options() []application.Option {
	return []application.Option{
		application.WithLogger(a.logger),
		application.WithMetrics(a.metrics),
	}
}

func (a *app) dashboardConfig() application.DashboardConfig {
	return application.DashboardConfig{
		Clock:                a.clock,
		PollInterval:         a.cfg.Poll.Interval,
		NotificationDuration: a.cfg.Notify.Duration,
		OverlayDuration:      a.cfg.Overlay.Duration,
		FeedSize:             a.cfg.Admin.FeedSize,
	}
}

// staleAfter is how old a snapshot may get before the view flags it: three
// missed ticks.
func (a *app) staleAfter() time.Duration {
	return 3 * a.cfg.Poll.Interval
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
