package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/x/stableswap/keeper"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

func execute(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--home", home, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := execute(t, home, args...)
	require.NoError(t, err, "stableswapd %v", args)
	return out
}

func TestPoolLifecycle(t *testing.T) {
	home := t.TempDir()

	var pool types.PoolState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "pool", "create", "--decimals", "18,18,18")), &pool))
	require.Equal(t, uint64(1), pool.ID)
	require.Len(t, pool.Basket.Assets, 3)

	amount := "100000000000000000000"
	var minted struct{ Minted string }
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "mint-multi", "1", "0,1,2", amount+","+amount+","+amount)), &minted))
	require.Equal(t, "300000000000000000000", minted.Minted)

	var swapped struct{ Output string }
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "swap", "1", "0", "1", "10000000000000000000")), &swapped))
	require.Equal(t, "9985667438114420088", swapped.Output)

	_, err := execute(t, home, "swap", "1", "0", "1", "10000000000000000000", "--min-output", "10000000000000000000")
	require.ErrorIs(t, err, types.ErrSlippage)

	mustExecute(t, home, "pool", "halt", "1", "--reason", "maintenance")
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "pool", "show", "1")), &pool))
	require.True(t, pool.Halted)
	require.Equal(t, "maintenance", pool.HaltReason)

	_, err = execute(t, home, "redeem", "1", "0", "1000000000000000000")
	require.ErrorIs(t, err, types.ErrPoolHalted)

	mustExecute(t, home, "pool", "resume", "1")
	require.Contains(t, mustExecute(t, home, "invariants"), "all invariants hold")

	var pools []types.PoolState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "pool", "list")), &pools))
	require.Len(t, pools, 1)
	require.False(t, pools[0].Halted)
}

func TestFeederCommands(t *testing.T) {
	home := t.TempDir()
	amount := "100000000000000000000"
	mustExecute(t, home, "pool", "create", "--decimals", "18,18,18")
	mustExecute(t, home, "mint-multi", "1", "0,1,2", amount+","+amount+","+amount)

	var feeder types.PoolState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "pool", "create-feeder", "1", "--decimals", "6")), &feeder))
	require.Equal(t, uint64(2), feeder.ID)
	require.Equal(t, uint64(1), feeder.MainPoolID)
	require.Equal(t, types.RoleFasset, feeder.Basket.Assets[1].Role)
	mustExecute(t, home, "mint-multi", "2", "0,1", "50000000000000000000,50000000")

	var swapped struct{ Output, Masset string }
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "feeder-swap", "2", "main:0", "1", "10000000000000000000")), &swapped))
	require.Len(t, swapped.Output, 7)
	require.NotEqual(t, "0", swapped.Masset)

	_, err := execute(t, home, "feeder-swap", "2", "0", "main:1", "1000000000000000000")
	require.ErrorIs(t, err, types.ErrInvalidPair)
	_, err = execute(t, home, "swap", "2", "0", "main:1", "1")
	require.Error(t, err)

	require.Contains(t, mustExecute(t, home, "invariants"), "all invariants hold")
}

func TestGenesisCommands(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(t.TempDir(), "genesis.json")

	mustExecute(t, home, "genesis", "default", path, "--db-backend", "memdb")
	require.Contains(t, mustExecute(t, home, "genesis", "validate", path, "--db-backend", "memdb"), "valid genesis file")

	mustExecute(t, home, "pool", "create")
	exported := filepath.Join(t.TempDir(), "exported.json")
	mustExecute(t, home, "genesis", "export", exported)

	fresh := t.TempDir()
	mustExecute(t, fresh, "genesis", "import", exported)
	var pool types.PoolState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, fresh, "pool", "show", "1")), &pool))
	require.Equal(t, uint64(1), pool.ID)
}

func TestRejectsBadArguments(t *testing.T) {
	home := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"pool id", []string{"pool", "show", "one"}},
		{"asset index", []string{"mint", "1", "-1", "5"}},
		{"amount", []string{"mint", "1", "0", "lots"}},
		{"decimals", []string{"pool", "create", "--decimals", "18,x"}},
		{"status", []string{"pool", "set-status", "1", "0", "wobbly"}},
		{"backend", []string{"pool", "list", "--db-backend", "rocksdb"}},
		{"feeder asset", []string{"feeder-swap", "2", "main:x", "1", "5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, home, tc.args...)
			require.Error(t, err)
		})
	}
}

func TestParseHelpers(t *testing.T) {
	indices, err := parseIndices("0, 2,1")
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 1}, indices)

	amounts, err := parseAmounts("5,10")
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	require.Equal(t, "10", amounts[1].String())

	amounts, err = parseAmounts("")
	require.NoError(t, err)
	require.Nil(t, amounts)

	_, err = parseAmounts("5,-1")
	require.Error(t, err)

	asset, err := parseFeederAsset("main:2")
	require.NoError(t, err)
	require.Equal(t, keeper.FeederAsset{Index: 2, MainPool: true}, asset)
	asset, err = parseFeederAsset("1")
	require.NoError(t, err)
	require.Equal(t, keeper.FeederAsset{Index: 1}, asset)
	_, err = parseFeederAsset("main:")
	require.Error(t, err)
}
