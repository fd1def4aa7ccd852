package gateway

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nftmarket/core"
	"nftmarket/core/events"
	"nftmarket/gateway/middleware"
	"nftmarket/storage/eventlog"
)

func chiParam(r *http.Request, name string) string { return chi.URLParam(r, name) }

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, err := addressParam(chiParam(r, "address"), "address")
	if err != nil {
		s.writeError(w, "bank.balance", err)
		return
	}
	s.invoke(w, r, "bank.balance", false, func(env *core.Env) (interface{}, error) {
		balance, err := env.Bank.Balance(account)
		if err != nil {
			return nil, err
		}
		return balanceView{Address: events.FormatAddress(account), Balance: events.FormatAmount(balance)}, nil
	})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	collection, err := addressParam(chiParam(r, "asset"), "asset")
	if err != nil {
		s.writeError(w, "registry.asset", err)
		return
	}
	tokenID, err := uintParam(r, "tokenId")
	if err != nil {
		s.writeError(w, "registry.asset", err)
		return
	}
	s.invoke(w, r, "registry.asset", false, func(env *core.Env) (interface{}, error) {
		asset, err := env.Registry.Asset(collection, tokenID)
		if err != nil {
			return nil, err
		}
		return newAssetView(asset), nil
	})
}

type mintRequest struct {
	Owner string `json:"owner"`
	URI   string `json:"uri"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	collection, err := addressParam(chiParam(r, "asset"), "asset")
	if err != nil {
		s.writeError(w, "registry.mint", err)
		return
	}
	var req mintRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "registry.mint", err)
		return
	}
	owner, err := addressParam(req.Owner, "owner")
	if err != nil {
		s.writeError(w, "registry.mint", err)
		return
	}
	s.invoke(w, r, "registry.mint", true, func(env *core.Env) (interface{}, error) {
		asset, err := env.Registry.Mint(collection, owner, req.URI)
		if err != nil {
			return nil, err
		}
		return newAssetView(asset), nil
	})
}

type operatorRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (s *Server) handleSetOperator(w http.ResponseWriter, r *http.Request) {
	owner, err := caller(r)
	if err != nil {
		s.writeError(w, "registry.set_operator", err)
		return
	}
	collection, err := addressParam(chiParam(r, "asset"), "asset")
	if err != nil {
		s.writeError(w, "registry.set_operator", err)
		return
	}
	var req operatorRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "registry.set_operator", err)
		return
	}
	operator, err := addressParam(req.Operator, "operator")
	if err != nil {
		s.writeError(w, "registry.set_operator", err)
		return
	}
	s.invoke(w, r, "registry.set_operator", true, func(env *core.Env) (interface{}, error) {
		if err := env.Registry.SetApprovalForAll(collection, owner, operator, req.Approved); err != nil {
			return nil, err
		}
		return req, nil
	})
}

type approveRequest struct {
	Spender string `json:"spender"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	owner, err := caller(r)
	if err != nil {
		s.writeError(w, "registry.approve", err)
		return
	}
	collection, err := addressParam(chiParam(r, "asset"), "asset")
	if err != nil {
		s.writeError(w, "registry.approve", err)
		return
	}
	tokenID, err := uintParam(r, "tokenId")
	if err != nil {
		s.writeError(w, "registry.approve", err)
		return
	}
	var req approveRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "registry.approve", err)
		return
	}
	spender, err := addressParam(req.Spender, "spender")
	if err != nil {
		s.writeError(w, "registry.approve", err)
		return
	}
	s.invoke(w, r, "registry.approve", true, func(env *core.Env) (interface{}, error) {
		if err := env.Registry.Approve(collection, tokenID, owner, spender); err != nil {
			return nil, err
		}
		asset, err := env.Registry.Asset(collection, tokenID)
		if err != nil {
			return nil, err
		}
		return newAssetView(asset), nil
	})
}

func eventQuery(r *http.Request) (eventlog.Query, error) {
	q := r.URL.Query()
	query := eventlog.Query{Type: q.Get("type"), ItemID: q.Get("item")}
	if raw := q.Get("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return query, badRequestf("after must be an unsigned integer")
		}
		query.After = after
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, badRequestf("limit must be a non-negative integer")
		}
		query.Limit = limit
	}
	return query, nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	query, err := eventQuery(r)
	if err != nil {
		s.writeError(w, "events.list", err)
		return
	}
	entries, err := s.archive.List(r.Context(), query)
	if err != nil {
		s.writeError(w, "events.list", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries)
}

// handleEventsExport streams matching events as a parquet file. Errors after
// the first byte can only be logged.
func (s *Server) handleEventsExport(w http.ResponseWriter, r *http.Request) {
	query, err := eventQuery(r)
	if err != nil {
		s.writeError(w, "events.export", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", `attachment; filename="events.parquet"`)
	rows, err := s.archive.ExportParquet(r.Context(), w, query)
	if err != nil {
		s.logger.Error("event export failed", "rows", rows, "error", err)
		return
	}
	s.logger.Info("events exported", "rows", rows, "type", query.Type)
}
