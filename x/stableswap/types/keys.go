package types

import (
	"encoding/binary"
)

const (
	// ModuleName defines the module name
	ModuleName = "stableswap"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Store key prefixes
var (
	PoolKey      = []byte{0x01} // prefix for pool state
	PoolCountKey = []byte{0x02} // key for the next pool id
	ParamsKey    = []byte{0x03} // key for module params
)

// GetPoolKey returns the store key for a pool
func GetPoolKey(poolID uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, poolID)
	return append(append([]byte{}, PoolKey...), bz...)
}

// PoolIDFromKey extracts the pool id from a pool store key.
func PoolIDFromKey(key []byte) uint64 {
	if len(key) < len(PoolKey)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(PoolKey):])
}
