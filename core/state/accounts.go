package state

import (
	"math/big"
)

// BalanceGet returns the native balance of addr; unknown accounts hold zero.
func (m *Manager) BalanceGet(addr [20]byte) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := m.KVGet(balanceKey(addr), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// BalancePut stores the native balance of addr.
func (m *Manager) BalancePut(addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return m.KVPut(balanceKey(addr), amount)
}

// GenesisApplied reports whether the genesis seed has been committed.
func (m *Manager) GenesisApplied() (bool, error) {
	var applied bool
	ok, err := m.KVGet(genesisKey, &applied)
	if err != nil || !ok {
		return false, err
	}
	return applied, nil
}

// MarkGenesisApplied records that the genesis seed has been committed.
func (m *Manager) MarkGenesisApplied() error {
	return m.KVPut(genesisKey, true)
}
