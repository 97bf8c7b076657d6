package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/roastme/internal/clients/gemini"
	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/metrics"
	"github.com/bobmcallan/roastme/internal/services/account"
	"github.com/bobmcallan/roastme/internal/services/quota"
	"github.com/bobmcallan/roastme/internal/services/roast"
	"github.com/bobmcallan/roastme/internal/services/settings"
	"github.com/bobmcallan/roastme/internal/storage/surrealdb"
)

// App holds all initialized services, clients and storage.
// It is the shared core used by cmd/roastme-server and the server tests.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	GeminiClient    interfaces.GenerativeClient // nil when no API key is configured
	Metrics         *metrics.Metrics
	QuotaGate       interfaces.QuotaGate
	RoastService    interfaces.RoastService
	SettingsService interfaces.SettingsService
	AccountService  interfaces.AccountService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: the given path, ROASTME_CONFIG,
// roastme.toml beside the binary, then config/roastme.toml for development.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("ROASTME_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "roastme.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/roastme.toml"
		}
	}
	return configPath
}

// NewApp loads configuration, connects storage and wires the services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	if missing := config.ValidateRequired(); len(missing) > 0 {
		if config.IsProduction() {
			return nil, fmt.Errorf("missing required configuration: %v", missing)
		}
		logger.Warn().Strs("missing", missing).Msg("Required configuration not set, using development defaults")
	}

	ctx := context.Background()

	storageManager, err := surrealdb.NewManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var model interfaces.GenerativeClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey, gemini.WithLogger(logger))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - roasts will be unavailable")
		} else {
			model = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - roasts will be unavailable")
	}

	a := New(config, logger, storageManager, model)
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// New wires services over already-constructed dependencies. model may be nil.
func New(config *common.Config, logger *common.Logger, storage interfaces.StorageManager, model interfaces.GenerativeClient) *App {
	m := metrics.New()
	users := storage.UserStore()

	gate := quota.NewGate(users, m, logger)

	roastService := roast.NewService(gate, model, roast.Config{
		TextModel:       config.Clients.Gemini.TextModel,
		VisionModel:     config.Clients.Gemini.VisionModel,
		MaxOutputTokens: config.Clients.Gemini.MaxOutputTokens,
	}, m, logger)

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storage,
		GeminiClient:    model,
		Metrics:         m,
		QuotaGate:       gate,
		RoastService:    roastService,
		SettingsService: settings.NewService(users, logger),
		AccountService:  account.NewService(users, config.Quota.InitialTokens, m, logger),
		StartupTime:     time.Now(),
	}
}

// Close releases storage.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
