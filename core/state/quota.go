package state

import (
	"math/big"

	"nftmarket/native/common"
)

type storedQuota struct {
	ReqCount  uint32
	ValueUsed *big.Int
	EpochID   uint64
}

func (m *Manager) QuotaGet(module string, addr [20]byte) (common.QuotaNow, error) {
	stored := new(storedQuota)
	ok, err := m.KVGet(quotaKey(module, addr), stored)
	if err != nil {
		return common.QuotaNow{}, err
	}
	if !ok {
		return common.QuotaNow{ValueUsed: big.NewInt(0)}, nil
	}
	return common.QuotaNow{ReqCount: stored.ReqCount, ValueUsed: stored.ValueUsed, EpochID: stored.EpochID}, nil
}

func (m *Manager) QuotaPut(module string, addr [20]byte, usage common.QuotaNow) error {
	value := usage.ValueUsed
	if value == nil {
		value = big.NewInt(0)
	}
	return m.KVPut(quotaKey(module, addr), &storedQuota{ReqCount: usage.ReqCount, ValueUsed: value, EpochID: usage.EpochID})
}
