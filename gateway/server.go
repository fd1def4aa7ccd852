package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"nftmarket/core"
	"nftmarket/core/types"
	"nftmarket/gateway/middleware"
	"nftmarket/storage/eventlog"
)

const maxBodyBytes = 1 << 20

// Executor runs engine invocations atomically.
type Executor interface {
	Execute(ctx context.Context, op string, fn func(*core.Env) error) error
	View(ctx context.Context, op string, fn func(*core.Env) error) error
}

// EventQuery reads archived events.
type EventQuery interface {
	List(ctx context.Context, q eventlog.Query) ([]eventlog.Entry, error)
	ExportParquet(ctx context.Context, w io.Writer, q eventlog.Query) (int, error)
}

type Config struct {
	Executor Executor
	Hub      *Hub
	// Archive is optional; without it /v1/events is not served.
	Archive    EventQuery
	Auth       middleware.AuthConfig
	RateLimits map[string]middleware.RateLimit
	CORS       middleware.CORSConfig
	Logger     *slog.Logger
}

// Server exposes the settlement engines over HTTP.
type Server struct {
	exec    Executor
	hub     *Hub
	archive EventQuery
	auth    *middleware.Authenticator
	limiter *middleware.RateLimiter
	cors    middleware.CORSConfig
	logger  *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Executor == nil {
		return nil, errors.New("gateway: executor required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(logger)
	}
	hub.SetAllowedOrigins(cfg.CORS.AllowedOrigins)
	return &Server{
		exec:    cfg.Executor,
		hub:     hub,
		archive: cfg.Archive,
		auth:    middleware.NewAuthenticator(cfg.Auth, logger),
		limiter: middleware.NewRateLimiter(cfg.RateLimits),
		cors:    cfg.CORS,
		logger:  logger,
	}, nil
}

// Handler returns the routed, instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(s.cors))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Anonymous GETs pass when the authenticator allows them.
	authn := s.auth.Middleware()
	admin := s.auth.Middleware(middleware.ScopeAdmin)

	r.Route("/v1/auction", func(sr chi.Router) {
		sr.Use(middleware.Observe("auction", s.logger))
		sr.With(authn, s.limiter.Middleware("auction")).Get("/price-with-fee", s.handleAuctionPriceWithFee)
		sr.With(authn, s.limiter.Middleware("auction")).Get("/items/{id}", s.handleAuctionItem)
		sr.With(authn, s.limiter.Middleware("auction")).Get("/items/{id}/pending/{account}", s.handleAuctionPending)
		sr.Group(func(wr chi.Router) {
			wr.Use(authn, s.limiter.Middleware("auction"))
			wr.Post("/items", s.handleAuctionEnroll)
			wr.Post("/items/{id}/bid", s.handleAuctionBid)
			wr.Post("/items/{id}/withdraw", s.handleAuctionWithdraw)
			wr.Post("/items/{id}/cancel", s.handleAuctionCancel)
			wr.Post("/items/{id}/end", s.handleAuctionEnd)
		})
		sr.Group(func(ar chi.Router) {
			ar.Use(admin, s.limiter.Middleware("auction"))
			ar.Post("/items/{id}/force-cancel", s.handleAuctionForceCancel)
			ar.Post("/items/{id}/force-end", s.handleAuctionForceEnd)
		})
	})

	r.Route("/v1/market", func(sr chi.Router) {
		sr.Use(middleware.Observe("marketplace", s.logger))
		sr.With(authn, s.limiter.Middleware("marketplace")).Get("/items/{id}", s.handleMarketItem)
		sr.With(authn, s.limiter.Middleware("marketplace")).Get("/items/{id}/total-price", s.handleMarketTotalPrice)
		sr.Group(func(wr chi.Router) {
			wr.Use(authn, s.limiter.Middleware("marketplace"))
			wr.Post("/items", s.handleMarketEnroll)
			wr.Post("/items/{id}/purchase", s.handleMarketPurchase)
		})
	})

	r.Route("/v1/accounts", func(sr chi.Router) {
		sr.Use(middleware.Observe("bank", s.logger), authn)
		sr.Get("/{address}/balance", s.handleBalance)
	})

	r.Route("/v1/assets", func(sr chi.Router) {
		sr.Use(middleware.Observe("registry", s.logger))
		sr.With(authn).Get("/{asset}/{tokenId}", s.handleAsset)
		sr.With(authn).Post("/{asset}/operators", s.handleSetOperator)
		sr.With(authn).Post("/{asset}/{tokenId}/approve", s.handleApprove)
		sr.With(admin).Post("/{asset}/mint", s.handleMint)
	})

	r.Route("/v1/events", func(sr chi.Router) {
		sr.Use(authn)
		sr.Handle("/ws", s.hub)
		if s.archive != nil {
			sr.With(middleware.Observe("events", s.logger)).Get("/", s.handleEvents)
			sr.With(middleware.Observe("events", s.logger)).Get("/export", s.handleEventsExport)
		}
	})

	return otelhttp.NewHandler(r, "nftmarket-gateway")
}

// invoke runs fn through the executor and writes its result. Reads go through
// View so they never commit.
func (s *Server) invoke(w http.ResponseWriter, r *http.Request, op string, commit bool, fn func(*core.Env) (interface{}, error)) {
	var out interface{}
	run := s.exec.View
	if commit {
		run = s.exec.Execute
	}
	err := run(r.Context(), op, func(env *core.Env) error {
		var err error
		out, err = fn(env)
		return err
	})
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...interface{}) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequestf("invalid request body: %v", err)
	}
	return nil
}

func caller(r *http.Request) ([20]byte, error) {
	addr, ok := middleware.Caller(r.Context())
	if !ok {
		return [20]byte{}, errors.New("gateway: request is not authenticated")
	}
	return addr, nil
}

func uintParam(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequestf("%s must be an unsigned integer", name)
	}
	return v, nil
}

func addressParam(raw, name string) ([20]byte, error) {
	addr, err := types.ParseAddress(raw)
	if err != nil {
		return [20]byte{}, badRequestf("%s: %v", name, err)
	}
	return addr, nil
}

// parseAmount accepts a base-10 integer. Sign and range checks are left to the
// engines so the failure carries their reason code.
func parseAmount(raw, name string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, badRequestf("%s must be a decimal integer", name)
	}
	return v, nil
}
