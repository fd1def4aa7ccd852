package core

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nftmarket/core/events"
	marketerrors "nftmarket/core/errors"
	"nftmarket/core/state"
	"nftmarket/native/auction"
	"nftmarket/native/bank"
	"nftmarket/native/common"
	"nftmarket/native/fees"
	"nftmarket/native/marketplace"
	"nftmarket/native/registry"
	"nftmarket/observability"
	telemetry "nftmarket/observability/otel"
	"nftmarket/storage"
)

var errNilDatabase = errors.New("executor: database not configured")

// Settings are the engine parameters shared by every invocation.
type Settings struct {
	AuctionVault [20]byte
	MarketVault  [20]byte
	FeeAccount   [20]byte
	AuctionFees  fees.Calculator
	MarketFees   fees.Calculator
	Royalty      fees.Calculator
	MinBidUnit   *big.Int
	Admins       [][20]byte
	Pauses       common.PauseView
	AuctionQuota common.Quota
	MarketQuota  common.Quota
}

// Env is the per-invocation view handed to operations. Every component is
// bound to the same write overlay and event buffer.
type Env struct {
	State       *state.Manager
	Bank        *bank.Bank
	Registry    *registry.Registry
	Auction     *auction.Engine
	Marketplace *marketplace.Engine
	// Now is read once when the invocation starts.
	Now int64
}

// Executor serialises engine invocations. Each invocation runs against a
// fresh overlay; it is committed as one batch on success and discarded on
// any error, and its events are only published after the commit.
type Executor struct {
	mu       sync.Mutex
	db       storage.Database
	settings Settings
	sink     events.Emitter
	nowFn    func() int64
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewExecutor creates an executor over db.
func NewExecutor(db storage.Database, settings Settings) *Executor {
	return &Executor{
		db:       db,
		settings: settings,
		sink:     events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
		logger:   slog.Default(),
		tracer:   telemetry.Tracer("nftmarket/core"),
	}
}

// SetEmitter configures where committed events are published.
func (x *Executor) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		x.sink = events.NoopEmitter{}
		return
	}
	x.sink = emitter
}

// SetNowFunc overrides the clock. Primarily intended for tests.
func (x *Executor) SetNowFunc(now func() int64) {
	if now == nil {
		x.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	x.nowFn = now
}

func (x *Executor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	x.logger = logger
}

func (x *Executor) newEnv(mgr *state.Manager, emitter events.Emitter, now int64) *Env {
	clock := func() int64 { return now }
	s := x.settings

	b := bank.NewBank(mgr)
	b.SetEmitter(emitter)

	reg := registry.NewRegistry(mgr)
	reg.SetEmitter(emitter)

	auc := auction.NewEngine()
	auc.SetState(mgr)
	auc.SetEmitter(emitter)
	auc.SetNowFunc(clock)
	auc.SetRegistry(reg)
	auc.SetFunds(b)
	auc.SetVault(s.AuctionVault)
	auc.SetFeeAccount(s.FeeAccount)
	auc.SetFeeCalculator(s.AuctionFees)
	auc.SetMinBidUnit(s.MinBidUnit)
	auc.SetAdmins(s.Admins)
	auc.SetPauses(s.Pauses)
	auc.SetQuota(s.AuctionQuota)

	mkt := marketplace.NewEngine()
	mkt.SetState(mgr)
	mkt.SetEmitter(emitter)
	mkt.SetNowFunc(clock)
	mkt.SetRegistry(reg)
	mkt.SetFunds(b)
	mkt.SetVault(s.MarketVault)
	mkt.SetFeeAccount(s.FeeAccount)
	mkt.SetFeeCalculator(s.MarketFees)
	mkt.SetRoyalty(s.Royalty)
	mkt.SetPauses(s.Pauses)
	mkt.SetQuota(s.MarketQuota)

	return &Env{
		State:       mgr,
		Bank:        b,
		Registry:    reg,
		Auction:     auc,
		Marketplace: mkt,
		Now:         now,
	}
}

// Execute runs fn as one atomic invocation named op.
func (x *Executor) Execute(ctx context.Context, op string, fn func(*Env) error) error {
	return x.run(ctx, op, true, fn)
}

// View runs fn against a throwaway overlay; nothing it writes is kept and no
// events are published.
func (x *Executor) View(ctx context.Context, op string, fn func(*Env) error) error {
	return x.run(ctx, op, false, fn)
}

func (x *Executor) run(ctx context.Context, op string, commit bool, fn func(*Env) error) (err error) {
	if x == nil || x.db == nil {
		return errNilDatabase
	}
	_, span := x.tracer.Start(ctx, op, trace.WithAttributes(attribute.Bool("commit", commit)))
	defer span.End()

	x.mu.Lock()
	defer x.mu.Unlock()

	started := time.Now()
	mgr := state.NewManager(x.db)
	buf := &events.Buffer{}
	env := x.newEnv(mgr, buf, x.nowFn())

	defer func() {
		reason := ""
		if err != nil {
			reason = "internal"
			if r, ok := marketerrors.ReasonOf(err); ok {
				reason = string(r)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, reason)
		}
		observability.EngineMetrics().Observe(op, reason, time.Since(started))
	}()

	if err = ctx.Err(); err != nil {
		mgr.Discard()
		return err
	}
	if err = fn(env); err != nil {
		mgr.Discard()
		buf.Reset()
		x.logger.Debug("invocation rejected", "operation", op, "error", err)
		return err
	}
	if !commit {
		mgr.Discard()
		return nil
	}
	keys := mgr.Pending()
	if err = mgr.Commit(); err != nil {
		buf.Reset()
		x.logger.Error("commit failed", "operation", op, "error", err)
		return err
	}
	observability.EngineMetrics().RecordCommit(keys)
	published := buf.Events()
	for _, evt := range published {
		observability.Events().RecordPublished(evt.EventType())
	}
	span.SetAttributes(attribute.Int("events", len(published)), attribute.Int("keys", keys))
	buf.FlushTo(x.sink)
	x.logger.Debug("invocation committed", "operation", op, "events", len(published), "keys", keys)
	return nil
}
