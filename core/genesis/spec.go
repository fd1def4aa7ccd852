package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"nftmarket/core/types"
)

// GenesisSpec seeds a fresh node with balances and minted assets.
type GenesisSpec struct {
	Alloc  map[string]string `yaml:"alloc"` // addr -> amount in base units
	Assets []AssetSpec       `yaml:"assets"`

	balances []Balance
}

// AssetSpec mints one token and optionally grants operators over the owner's
// tokens in the collection, such as the auction and marketplace vaults.
type AssetSpec struct {
	Collection string   `yaml:"collection"`
	Owner      string   `yaml:"owner"`
	URI        string   `yaml:"uri"`
	Operators  []string `yaml:"operators,omitempty"`

	collection [20]byte
	owner      [20]byte
	operators  [][20]byte
}

// Balance is a validated allocation.
type Balance struct {
	Account [20]byte
	Amount  *big.Int
}

// LoadGenesisSpec reads and validates a YAML genesis file. Unknown fields are
// rejected.
func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	spec, err := ParseGenesisSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("genesis spec %q: %w", path, err)
	}
	return spec, nil
}

// ParseGenesisSpec decodes and validates a YAML genesis document.
func ParseGenesisSpec(raw []byte) (*GenesisSpec, error) {
	var spec GenesisSpec
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return &spec, nil
}

// Balances returns the validated allocations sorted by account.
func (s *GenesisSpec) Balances() []Balance { return s.balances }

func (s *GenesisSpec) validate() error {
	s.balances = s.balances[:0]
	for rawAddr, rawAmount := range s.Alloc {
		addr, err := types.ParseAddress(rawAddr)
		if err != nil {
			return fmt.Errorf("alloc: %w", err)
		}
		amount, err := parseAmountString(rawAmount)
		if err != nil {
			return fmt.Errorf("alloc %s: %w", rawAddr, err)
		}
		if amount.Sign() == 0 {
			continue
		}
		s.balances = append(s.balances, Balance{Account: addr, Amount: amount})
	}
	sort.Slice(s.balances, func(i, j int) bool {
		return bytes.Compare(s.balances[i].Account[:], s.balances[j].Account[:]) < 0
	})

	for i := range s.Assets {
		if err := s.Assets[i].validate(); err != nil {
			return fmt.Errorf("asset[%d]: %w", i, err)
		}
	}
	return nil
}

func (a *AssetSpec) validate() error {
	var err error
	if a.collection, err = types.ParseAddress(a.Collection); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	if a.owner, err = types.ParseAddress(a.Owner); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	a.operators = a.operators[:0]
	for _, raw := range a.Operators {
		op, err := types.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("operator: %w", err)
		}
		a.operators = append(a.operators, op)
	}
	return nil
}

func parseAmountString(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}
