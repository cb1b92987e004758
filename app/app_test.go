package app_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/app"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

func memConfig(t *testing.T) app.Config {
	t.Helper()
	t.Setenv("STABLESWAP_DB_BACKEND", "memdb")
	t.Setenv("STABLESWAP_HOME", t.TempDir())
	cfg, err := app.LoadConfig("")
	require.NoError(t, err)
	return cfg
}

func newApp(t *testing.T, cfg app.Config) *app.App {
	t.Helper()
	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func seedPool(t *testing.T, a *app.App) types.PoolState {
	t.Helper()
	ctx := context.Background()
	var assets []types.Asset
	for i := 0; i < 3; i++ {
		asset, err := types.NewAsset(18, sdkmath.ZeroUint())
		require.NoError(t, err)
		assets = append(assets, asset)
	}
	pool, err := a.Keeper.CreatePool(ctx, nil, assets)
	require.NoError(t, err)

	amount := sdkmath.NewUintFromString("100000000000000000000")
	_, err = a.Keeper.MintMulti(ctx, pool.ID, []int{0, 1, 2}, []sdkmath.Uint{amount, amount, amount}, sdkmath.Uint{})
	require.NoError(t, err)
	return pool
}

func TestNewLogger(t *testing.T) {
	cfg := memConfig(t)

	var buf bytes.Buffer
	cfg.LogJSON = true
	logger, err := app.NewLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Info("pool created", "pool_id", 1)
	require.Contains(t, buf.String(), `"pool_id":1`)

	buf.Reset()
	logger.Debug("hidden")
	require.Empty(t, buf.String())

	cfg.LogLevel = "loud"
	_, err = app.NewLogger(cfg, &buf)
	require.ErrorContains(t, err, "invalid log level")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := memConfig(t)
	cfg.DBBackend = "badger"
	_, err := app.New(cfg, nil)
	require.Error(t, err)
}

func TestNewOpensLevelDB(t *testing.T) {
	cfg := memConfig(t)
	cfg.DBBackend = "goleveldb"

	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	pool := seedPool(t, a)
	require.NoError(t, a.Close(context.Background()))

	reopened := newApp(t, cfg)
	got, err := reopened.Keeper.GetPool(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, "300000000000000000000", got.TotalSupply.String())
	require.DirExists(t, cfg.DataDir())
}

func TestGenesisFileRoundTrip(t *testing.T) {
	cfg := memConfig(t)
	a := newApp(t, cfg)
	pool := seedPool(t, a)
	ctx := context.Background()

	gs, err := a.Keeper.ExportGenesis(ctx)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, app.WriteGenesisFile(path, gs))

	read, err := app.ReadGenesisFile(path)
	require.NoError(t, err)
	require.Equal(t, gs.NextPoolID, read.NextPoolID)
	require.Len(t, read.Pools, 1)

	fresh := newApp(t, cfg)
	require.NoError(t, fresh.InitFromGenesis(ctx, path))
	got, err := fresh.Keeper.GetPool(ctx, pool.ID)
	require.NoError(t, err)
	require.Equal(t, "300000000000000000000", got.TotalSupply.String())

	// a populated store refuses a second import
	require.Error(t, fresh.InitFromGenesis(ctx, path))
}

func TestReadGenesisFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := app.ReadGenesisFile(filepath.Join(dir, "missing.json"))
	require.ErrorContains(t, err, "failed to read genesis file")

	gs := types.DefaultGenesis()
	gs.NextPoolID = 0
	path := filepath.Join(dir, "invalid.json")
	require.NoError(t, app.WriteGenesisFile(path, gs))
	_, err = app.ReadGenesisFile(path)
	require.ErrorContains(t, err, "invalid genesis file")
}

func TestDefaultGenesisUsesConfiguredParams(t *testing.T) {
	t.Setenv("STABLESWAP_PARAMS_AMPLIFICATION", "300")
	cfg := memConfig(t)
	a := newApp(t, cfg)

	gs := a.DefaultGenesis()
	require.Equal(t, uint64(300), gs.Params.Amplification)
	require.Equal(t, uint64(1), gs.NextPoolID)
	require.NoError(t, gs.Validate())
	require.NoError(t, a.Telemetry().HealthCheck())
}
