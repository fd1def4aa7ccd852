package common

import (
	"fmt"
	"math"
	"math/big"

	marketerrors "nftmarket/core/errors"
)

var (
	ErrQuotaRequestsExceeded = fmt.Errorf("%w: requests per epoch", marketerrors.ErrQuotaExceeded)
	ErrQuotaValueCapExceeded = fmt.Errorf("%w: value per epoch", marketerrors.ErrQuotaExceeded)
	ErrQuotaCounterOverflow  = fmt.Errorf("%w: quota counter", marketerrors.ErrOverflow)
)

// QuotaNow captures the current quota usage counters for an address.
type QuotaNow struct {
	ReqCount  uint32
	ValueUsed *big.Int
	EpochID   uint64
}

// Quota defines the limits enforced for a module interaction per address. A
// zero EpochSeconds disables the quota entirely.
type Quota struct {
	MaxRequestsPerEpoch uint32
	MaxValuePerEpoch    *big.Int
	EpochSeconds        uint32
}

// Enabled reports whether the quota should be evaluated at all.
func (q Quota) Enabled() bool {
	return q.EpochSeconds > 0 && (q.MaxRequestsPerEpoch > 0 || (q.MaxValuePerEpoch != nil && q.MaxValuePerEpoch.Sign() > 0))
}

// EpochFor maps a unix timestamp onto the quota epoch it falls in.
func (q Quota) EpochFor(now int64) uint64 {
	if q.EpochSeconds == 0 || now <= 0 {
		return 0
	}
	return uint64(now) / uint64(q.EpochSeconds)
}

// CheckQuota verifies whether the additional request and value usage fit within
// the configured quota. The returned QuotaNow reflects the updated counters when
// the quota is not exceeded; on denial prev is returned unchanged.
func CheckQuota(q Quota, nowEpoch uint64, prev QuotaNow, addReq uint32, addValue *big.Int) (QuotaNow, error) {
	next := QuotaNow{ReqCount: prev.ReqCount, ValueUsed: Clone(prev.ValueUsed), EpochID: prev.EpochID}
	if prev.EpochID != nowEpoch {
		next = QuotaNow{EpochID: nowEpoch, ValueUsed: big.NewInt(0)}
	}

	if addReq > 0 {
		if next.ReqCount > math.MaxUint32-addReq {
			return prev, ErrQuotaCounterOverflow
		}
		next.ReqCount += addReq
	}
	if q.MaxRequestsPerEpoch > 0 && next.ReqCount > q.MaxRequestsPerEpoch {
		return prev, ErrQuotaRequestsExceeded
	}

	if addValue != nil && addValue.Sign() > 0 {
		sum, err := AddChecked(next.ValueUsed, addValue)
		if err != nil {
			return prev, ErrQuotaCounterOverflow
		}
		next.ValueUsed = sum
	}
	if q.MaxValuePerEpoch != nil && q.MaxValuePerEpoch.Sign() > 0 && next.ValueUsed.Cmp(q.MaxValuePerEpoch) > 0 {
		return prev, ErrQuotaValueCapExceeded
	}

	return next, nil
}

// QuotaStore persists per-address quota counters per module.
type QuotaStore interface {
	QuotaGet(module string, addr [20]byte) (QuotaNow, error)
	QuotaPut(module string, addr [20]byte, usage QuotaNow) error
}

// ConsumeQuota charges one request of value against addr's quota for module
// and persists the updated counters. Disabled quotas are not recorded.
func ConsumeQuota(store QuotaStore, module string, q Quota, now int64, addr [20]byte, value *big.Int) error {
	if store == nil || !q.Enabled() {
		return nil
	}
	prev, err := store.QuotaGet(module, addr)
	if err != nil {
		return err
	}
	next, err := CheckQuota(q, q.EpochFor(now), prev, 1, value)
	if err != nil {
		return fmt.Errorf("%s: %w", module, err)
	}
	return store.QuotaPut(module, addr, next)
}
