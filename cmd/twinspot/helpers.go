package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/config"
	"github.com/kozzzzzzy/twin-sync-addon/internal/engine"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/readiness"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
	"github.com/kozzzzzzy/twin-sync-addon/internal/storage"
	"github.com/kozzzzzzy/twin-sync-addon/internal/vision"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initCamera builds the Home Assistant camera source from configuration.
// Inside a supervised install the supervisor token is picked up
// automatically.
func initCamera() (*vision.HACamera, error) {
	baseURL := viper.GetString("home_assistant.url")
	if baseURL == "" {
		baseURL = "http://supervisor/core"
	}
	token := viper.GetString("home_assistant.token")
	if token == "" {
		token = os.Getenv("SUPERVISOR_TOKEN")
	}
	if token == "" {
		return nil, common.NewUserError(
			"no Home Assistant token configured; set home_assistant.token or run supervised",
			common.ErrMissingConfig)
	}
	return vision.NewHACamera(baseURL, token)
}

// initEngine wires storage, camera, vision model and readiness evaluation
// into a ready-to-run engine.
func initEngine(store service.Storage) (*engine.SpotEngine, error) {
	camera, err := initCamera()
	if err != nil {
		return nil, err
	}

	apiKey := viper.GetString("gemini.api_key")
	if apiKey == "" {
		return nil, common.NewUserError(
			"no Gemini API key configured; set gemini.api_key or TWINSPOT_GEMINI_API_KEY",
			common.ErrMissingConfig)
	}

	client, err := vision.NewGeminiClient(vision.Config{
		APIKey:      apiKey,
		Model:       viper.GetString("gemini.model"),
		Timeout:     viper.GetDuration("gemini.timeout"),
		Temperature: viper.GetFloat64("gemini.temperature"),
	}, camera)
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultConfig()
	if d := viper.GetDuration("check.observation_timeout"); d > 0 {
		cfg.ObservationTimeout = d
	}
	if n := viper.GetInt("check.max_concurrent"); n > 0 {
		cfg.MaxConcurrentChecks = n
	}
	if tz := viper.GetString("check.timezone"); tz != "" {
		loc, locErr := time.LoadLocation(tz)
		if locErr != nil {
			return nil, fmt.Errorf("invalid check.timezone %q: %w", tz, locErr)
		}
		cfg.Location = loc
	}

	evaluator := readiness.NewEvaluator(readiness.NewTokenMatcher())
	return engine.NewWithConfig(store, client, evaluator, cfg), nil
}

// initEngineLocal builds an engine for operations that never observe a
// camera, such as streak resets. No vision credentials are needed.
func initEngineLocal(store service.Storage) (*engine.SpotEngine, error) {
	evaluator := readiness.NewEvaluator(readiness.NewTokenMatcher())
	return engine.NewWithConfig(store, nil, evaluator, engine.DefaultConfig()), nil
}

// resolveSpot accepts either a numeric spot ID or a spot name.
func resolveSpot(ctx context.Context, store service.Storage, arg string) (*model.Spot, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return store.GetSpot(ctx, id)
	}
	return store.GetSpotByName(ctx, arg)
}
