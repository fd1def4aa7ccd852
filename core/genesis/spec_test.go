package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/core/state"
	"nftmarket/native/bank"
	"nftmarket/native/registry"
	"nftmarket/storage"
)

const sampleSpec = `
alloc:
  "0x0000000000000000000000000000000000000001": "1000"
  "0x0000000000000000000000000000000000000002": "0"
assets:
  - collection: "0x00000000000000000000000000000000000000c0"
    owner: "0x0000000000000000000000000000000000000001"
    uri: "ipfs://token-1"
    operators:
      - "0x00000000000000000000000000000000000000aa"
`

func TestLoadGenesisSpecAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSpec), 0o600))

	spec, err := LoadGenesisSpec(path)
	require.NoError(t, err)
	require.Len(t, spec.Balances(), 1, "zero allocations are skipped")

	db := storage.NewMemDB()
	mgr := state.NewManager(db)
	b := bank.NewBank(mgr)
	reg := registry.NewRegistry(mgr)

	applied, err := Apply(spec, mgr, b, reg)
	require.NoError(t, err)
	require.True(t, applied)

	owner := [20]byte{19: 0x01}
	bal, err := b.Balance(owner)
	require.NoError(t, err)
	require.Equal(t, int64(1000), bal.Int64())

	collection := [20]byte{19: 0xc0}
	vault := [20]byte{19: 0xaa}
	ok, err := reg.IsAuthorized(collection, 1, owner, vault)
	require.NoError(t, err)
	require.True(t, ok)

	applied, err = Apply(spec, mgr, b, reg)
	require.NoError(t, err)
	require.False(t, applied, "genesis must only apply once")
}

func TestParseGenesisSpecRejectsBadInput(t *testing.T) {
	_, err := ParseGenesisSpec([]byte("alloc:\n  \"0x01\": \"5\"\n"))
	require.Error(t, err)

	_, err = ParseGenesisSpec([]byte("alloc:\n  \"0x0000000000000000000000000000000000000001\": \"-5\"\n"))
	require.Error(t, err)

	_, err = ParseGenesisSpec([]byte("unknown: true\n"))
	require.Error(t, err)
}
