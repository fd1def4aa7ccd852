package eventlog

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"lukechampine.com/blake3"
)

// ErrChainBroken reports an archived record whose digest does not follow from
// its predecessor.
var ErrChainBroken = errors.New("eventlog: digest chain broken")

func chainDigest(prev [32]byte, seq uint64, eventType, attrs string) [32]byte {
	buf := make([]byte, 0, len(prev)+8+len(eventType)+1+len(attrs))
	buf = append(buf, prev[:]...)
	buf = binary.BigEndian.AppendUint64(buf, seq)
	buf = append(buf, eventType...)
	buf = append(buf, 0)
	buf = append(buf, attrs...)
	return blake3.Sum256(buf)
}

func decodeDigest(raw string) ([32]byte, error) {
	var out [32]byte
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return out, err
	}
	if len(decoded) != len(out) {
		return out, fmt.Errorf("digest length %d", len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}

// Verify recomputes the digest chain over the whole archive and returns the
// number of records checked.
func (a *Archive) Verify(ctx context.Context) (int, error) {
	var prev [32]byte
	var after uint64
	checked := 0
	for {
		var records []Record
		err := a.db.WithContext(ctx).Where("seq > ?", after).Order("seq asc").Limit(maxQueryLimit).Find(&records).Error
		if err != nil {
			return checked, err
		}
		for _, r := range records {
			if r.Seq != after+1 {
				return checked, fmt.Errorf("%w: gap before %d", ErrChainBroken, r.Seq)
			}
			want := chainDigest(prev, r.Seq, r.Type, r.Attributes)
			if hex.EncodeToString(want[:]) != r.Digest {
				return checked, fmt.Errorf("%w: record %d", ErrChainBroken, r.Seq)
			}
			prev = want
			after = r.Seq
			checked++
		}
		if len(records) < maxQueryLimit {
			return checked, nil
		}
	}
}
