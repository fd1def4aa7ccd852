package eventlog

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/core/events"
	"nftmarket/core/types"
)

type payload struct{ evt *types.Event }

func (p payload) EventType() string   { return p.evt.Type }
func (p payload) Event() *types.Event { return p.evt }

type bare struct{}

func (bare) EventType() string { return "bare" }

func openTestArchive(t *testing.T, path string) *Archive {
	t.Helper()
	archive, err := Open(DriverSQLite, fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	require.NoError(t, err)
	return archive
}

func TestArchiveAppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	archive := openTestArchive(t, path)

	var emitter events.Emitter = archive
	emitter.Emit(payload{&types.Event{Type: "auction.bid", Attributes: map[string]string{"itemId": "1", "amount": "200"}}})
	emitter.Emit(payload{&types.Event{Type: "auction.end", Attributes: map[string]string{"itemId": "1"}}})
	emitter.Emit(payload{&types.Event{Type: "marketplace.bought", Attributes: map[string]string{"itemId": "2"}}})
	emitter.Emit(bare{})

	all, err := archive.List(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(1), all[0].Seq)
	require.Equal(t, "200", all[0].Attrs["amount"])

	bids, err := archive.List(context.Background(), Query{Type: "auction.bid"})
	require.NoError(t, err)
	require.Len(t, bids, 1)

	item1, err := archive.List(context.Background(), Query{ItemID: "1", After: 1})
	require.NoError(t, err)
	require.Len(t, item1, 1)
	require.Equal(t, "auction.end", item1[0].Type)
	require.NoError(t, archive.Close())

	reopened := openTestArchive(t, path)
	defer reopened.Close()
	require.NoError(t, reopened.Append(context.Background(), &types.Event{Type: "auction.cancel"}))
	latest, err := reopened.List(context.Background(), Query{After: 3})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, uint64(4), latest[0].Seq, "sequence must continue after reopen")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	require.Error(t, err)
}

func TestExportParquet(t *testing.T) {
	archive := openTestArchive(t, filepath.Join(t.TempDir(), "events.db"))
	defer archive.Close()
	for i := 0; i < 3; i++ {
		require.NoError(t, archive.Append(context.Background(), &types.Event{
			Type:       "auction.bid",
			Attributes: map[string]string{"itemId": "7", "amount": fmt.Sprint(100 * (i + 1))},
		}))
	}
	require.NoError(t, archive.Append(context.Background(), &types.Event{Type: "bank.transfer"}))

	var buf bytes.Buffer
	n, err := archive.ExportParquet(context.Background(), &buf, Query{Type: "auction.bid"})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	out := buf.Bytes()
	require.Greater(t, len(out), 8)
	require.Equal(t, []byte("PAR1"), out[:4])
	require.Equal(t, []byte("PAR1"), out[len(out)-4:])
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	archive := openTestArchive(t, path)
	for i := 0; i < 3; i++ {
		require.NoError(t, archive.Append(context.Background(), &types.Event{
			Type:       "auction.bid",
			Attributes: map[string]string{"itemId": "1", "amount": fmt.Sprint(i)},
		}))
	}
	require.NoError(t, archive.Close())

	reopened := openTestArchive(t, path)
	defer reopened.Close()
	require.NoError(t, reopened.Append(context.Background(), &types.Event{Type: "auction.end"}))
	checked, err := reopened.Verify(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, checked, "chain must continue across reopen")

	require.NoError(t, reopened.db.Model(&Record{}).Where("seq = ?", 2).Update("attributes", `{"amount":"999"}`).Error)
	checked, err = reopened.Verify(context.Background())
	require.ErrorIs(t, err, ErrChainBroken)
	require.Equal(t, 1, checked)
}
