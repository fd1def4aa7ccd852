package eventlog

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/observability"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// Archive persists committed events to a relational store. It implements
// events.Emitter so the executor can publish to it directly.
type Archive struct {
	db     *gorm.DB
	logger *slog.Logger
	nowFn  func() time.Time

	mu   sync.Mutex
	seq  uint64
	last [32]byte
}

// Open connects to the archive database and migrates the schema.
func Open(driver, dsn string) (*Archive, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("eventlog: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", driver, err)
	}
	return New(db)
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) (*Archive, error) {
	if db == nil {
		return nil, errors.New("eventlog: database required")
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("eventlog: migrate: %w", err)
	}
	var last Record
	err := db.Order("seq desc").Limit(1).Find(&last).Error
	if err != nil {
		return nil, fmt.Errorf("eventlog: load sequence: %w", err)
	}
	archive := &Archive{db: db, logger: slog.Default(), nowFn: time.Now, seq: last.Seq}
	if last.Digest != "" {
		prev, err := decodeDigest(last.Digest)
		if err != nil {
			return nil, fmt.Errorf("eventlog: record %d: %w", last.Seq, err)
		}
		archive.last = prev
	}
	return archive, nil
}

func (a *Archive) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Emit implements events.Emitter. Events without a canonical payload are
// skipped; write failures are logged and never propagate to the engine.
func (a *Archive) Emit(evt events.Event) {
	payload, ok := evt.(events.Payload)
	if !ok {
		return
	}
	if err := a.Append(context.Background(), payload.Event()); err != nil {
		a.logger.Error("archive event", "type", evt.EventType(), "error", err)
	}
}

// Append stores one event.
func (a *Archive) Append(ctx context.Context, evt *types.Event) error {
	if evt == nil {
		return nil
	}
	attrs, err := json.Marshal(evt.Attributes)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	seq := a.seq + 1
	digest := chainDigest(a.last, seq, evt.Type, string(attrs))
	record := Record{
		ID:         uuid.New(),
		Seq:        seq,
		Type:       evt.Type,
		ItemID:     evt.Attributes["itemId"],
		Attributes: string(attrs),
		Digest:     hex.EncodeToString(digest[:]),
		CreatedAt:  a.nowFn().UTC(),
	}
	err = a.db.WithContext(ctx).Create(&record).Error
	observability.Events().RecordArchive(err)
	if err != nil {
		return err
	}
	a.seq = seq
	a.last = digest
	return nil
}

// Query filters archived events.
type Query struct {
	Type   string
	ItemID string
	After  uint64
	Limit  int
}

// Entry is an archived event with its decoded attributes.
type Entry struct {
	ID        string            `json:"id"`
	Seq       uint64            `json:"seq"`
	Type      string            `json:"type"`
	CreatedAt time.Time         `json:"createdAt"`
	Attrs     map[string]string `json:"attributes"`
}

// List returns events in commit order.
func (a *Archive) List(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	tx := a.db.WithContext(ctx).Model(&Record{}).Where("seq > ?", q.After)
	if t := strings.TrimSpace(q.Type); t != "" {
		tx = tx.Where("type = ?", t)
	}
	if id := strings.TrimSpace(q.ItemID); id != "" {
		tx = tx.Where("item_id = ?", id)
	}
	var records []Record
	if err := tx.Order("seq asc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		attrs := map[string]string{}
		if err := json.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
			return nil, fmt.Errorf("eventlog: decode %s: %w", r.ID, err)
		}
		out = append(out, Entry{ID: r.ID.String(), Seq: r.Seq, Type: r.Type, CreatedAt: r.CreatedAt, Attrs: attrs})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
