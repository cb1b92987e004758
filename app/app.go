// Package app assembles the stableswap host: configuration, logging, telemetry and the
// pool keeper over a cosmos-db backend.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"

	"github.com/paw-chain/stableswap/app/telemetry"
	"github.com/paw-chain/stableswap/x/stableswap/keeper"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// Name is the application name.
const Name = "stableswap"

// App wires the keeper to its storage and telemetry.
type App struct {
	cfg       Config
	logger    log.Logger
	db        dbm.DB
	telemetry *telemetry.Provider

	Keeper *keeper.Keeper
}

// NewLogger returns the process logger for the configured level and format.
func NewLogger(cfg Config, dst io.Writer) (log.Logger, error) {
	if dst == nil {
		dst = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	opts := []log.Option{log.LevelOption(level)}
	if cfg.LogJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(dst, opts...), nil
}

// New opens the database described by cfg and builds the keeper.
func New(cfg Config, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	tp, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		telemetry: tp,
		Keeper:    keeper.NewKeeper(db, logger, cfg.Params),
	}
	logger.Info("app initialized", "db_backend", cfg.DBBackend, "data_dir", cfg.DataDir())
	return app, nil
}

func openDB(cfg Config) (dbm.DB, error) {
	if cfg.DBBackend == string(dbm.MemDBBackend) {
		return dbm.NewMemDB(), nil
	}
	dir := cfg.DataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := dbm.NewDB(cfg.DBName, dbm.BackendType(cfg.DBBackend), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DBBackend, err)
	}
	return db, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() Config { return a.cfg }

// Logger returns the app logger.
func (a *App) Logger() log.Logger { return a.logger }

// Telemetry returns the telemetry provider.
func (a *App) Telemetry() *telemetry.Provider { return a.telemetry }

// Close flushes telemetry and closes the database.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.telemetry != nil {
		if shutdownErr := a.telemetry.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
		}
	}
	if closeErr := a.db.Close(); closeErr != nil {
		if err != nil {
			return fmt.Errorf("%w; failed to close db: %w", err, closeErr)
		}
		return fmt.Errorf("failed to close db: %w", closeErr)
	}
	return err
}

// InitFromGenesis loads a genesis file into an empty store.
func (a *App) InitFromGenesis(ctx context.Context, path string) error {
	genState, err := ReadGenesisFile(path)
	if err != nil {
		return err
	}
	return a.Keeper.InitGenesis(ctx, *genState)
}

// DefaultGenesis returns the default genesis with the configured params.
func (a *App) DefaultGenesis() *types.GenesisState {
	gs := types.DefaultGenesis()
	gs.Params = a.cfg.Params
	return gs
}
