package gateway

import (
	"net/http"

	"nftmarket/core"
	"nftmarket/native/auction"
)

type auctionEnrollRequest struct {
	StartPrice string `json:"startPrice"`
	EndAt      int64  `json:"endAt"`
	Asset      string `json:"asset"`
	TokenID    uint64 `json:"tokenId"`
}

type paymentRequest struct {
	Payment string `json:"payment"`
}

func (s *Server) handleAuctionEnroll(w http.ResponseWriter, r *http.Request) {
	seller, err := caller(r)
	if err != nil {
		s.writeError(w, "auction.enroll", err)
		return
	}
	var req auctionEnrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "auction.enroll", err)
		return
	}
	price, err := parseAmount(req.StartPrice, "startPrice")
	if err != nil {
		s.writeError(w, "auction.enroll", err)
		return
	}
	asset, err := addressParam(req.Asset, "asset")
	if err != nil {
		s.writeError(w, "auction.enroll", err)
		return
	}
	s.invoke(w, r, "auction.enroll", true, func(env *core.Env) (interface{}, error) {
		item, err := env.Auction.Enroll(seller, price, req.EndAt, asset, req.TokenID)
		if err != nil {
			return nil, err
		}
		return newAuctionItemView(item), nil
	})
}

func (s *Server) handleAuctionBid(w http.ResponseWriter, r *http.Request) {
	bidder, err := caller(r)
	if err != nil {
		s.writeError(w, "auction.bid", err)
		return
	}
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "auction.bid", err)
		return
	}
	var req paymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "auction.bid", err)
		return
	}
	payment, err := parseAmount(req.Payment, "payment")
	if err != nil {
		s.writeError(w, "auction.bid", err)
		return
	}
	s.invoke(w, r, "auction.bid", true, func(env *core.Env) (interface{}, error) {
		item, err := env.Auction.Bid(bidder, id, payment)
		if err != nil {
			return nil, err
		}
		return newAuctionItemView(item), nil
	})
}

func (s *Server) handleAuctionWithdraw(w http.ResponseWriter, r *http.Request) {
	account, err := caller(r)
	if err != nil {
		s.writeError(w, "auction.withdraw", err)
		return
	}
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "auction.withdraw", err)
		return
	}
	s.invoke(w, r, "auction.withdraw", true, func(env *core.Env) (interface{}, error) {
		amount, err := env.Auction.Withdraw(account, id)
		if err != nil {
			return nil, err
		}
		return newAmountView(amount), nil
	})
}

// itemAction serves the lifecycle endpoints that take only the item id.
func (s *Server) itemAction(op string, fn func(env *core.Env, caller [20]byte, id uint64) (*auction.Item, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := caller(r)
		if err != nil {
			s.writeError(w, op, err)
			return
		}
		id, err := uintParam(r, "id")
		if err != nil {
			s.writeError(w, op, err)
			return
		}
		s.invoke(w, r, op, true, func(env *core.Env) (interface{}, error) {
			item, err := fn(env, account, id)
			if err != nil {
				return nil, err
			}
			return newAuctionItemView(item), nil
		})
	}
}

func (s *Server) handleAuctionCancel(w http.ResponseWriter, r *http.Request) {
	s.itemAction("auction.cancel", func(env *core.Env, account [20]byte, id uint64) (*auction.Item, error) {
		return env.Auction.Cancel(account, id)
	})(w, r)
}

func (s *Server) handleAuctionForceCancel(w http.ResponseWriter, r *http.Request) {
	s.itemAction("auction.force_cancel", func(env *core.Env, account [20]byte, id uint64) (*auction.Item, error) {
		return env.Auction.ForceCancel(account, id)
	})(w, r)
}

// End is open to any authenticated caller once the end time has passed.
func (s *Server) handleAuctionEnd(w http.ResponseWriter, r *http.Request) {
	s.itemAction("auction.end", func(env *core.Env, _ [20]byte, id uint64) (*auction.Item, error) {
		return env.Auction.End(id)
	})(w, r)
}

func (s *Server) handleAuctionForceEnd(w http.ResponseWriter, r *http.Request) {
	s.itemAction("auction.force_end", func(env *core.Env, account [20]byte, id uint64) (*auction.Item, error) {
		return env.Auction.ForceEnd(account, id)
	})(w, r)
}

func (s *Server) handleAuctionItem(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "auction.item", err)
		return
	}
	s.invoke(w, r, "auction.item", false, func(env *core.Env) (interface{}, error) {
		item, err := env.Auction.Item(id)
		if err != nil {
			return nil, err
		}
		return newAuctionItemView(item), nil
	})
}

func (s *Server) handleAuctionPending(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "auction.pending", err)
		return
	}
	account, err := addressParam(chiParam(r, "account"), "account")
	if err != nil {
		s.writeError(w, "auction.pending", err)
		return
	}
	s.invoke(w, r, "auction.pending", false, func(env *core.Env) (interface{}, error) {
		amount, err := env.Auction.PendingBid(id, account)
		if err != nil {
			return nil, err
		}
		return newAmountView(amount), nil
	})
}

func (s *Server) handleAuctionPriceWithFee(w http.ResponseWriter, r *http.Request) {
	amount, err := parseAmount(r.URL.Query().Get("amount"), "amount")
	if err != nil {
		s.writeError(w, "auction.price_with_fee", err)
		return
	}
	s.invoke(w, r, "auction.price_with_fee", false, func(env *core.Env) (interface{}, error) {
		total, err := env.Auction.PriceWithFee(amount)
		if err != nil {
			return nil, err
		}
		return newAmountView(total), nil
	})
}
