package gateway

import (
	"net/http"

	"nftmarket/core"
)

type marketEnrollRequest struct {
	Asset   string `json:"asset"`
	TokenID uint64 `json:"tokenId"`
	Price   string `json:"price"`
}

func (s *Server) handleMarketEnroll(w http.ResponseWriter, r *http.Request) {
	seller, err := caller(r)
	if err != nil {
		s.writeError(w, "marketplace.enroll", err)
		return
	}
	var req marketEnrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "marketplace.enroll", err)
		return
	}
	asset, err := addressParam(req.Asset, "asset")
	if err != nil {
		s.writeError(w, "marketplace.enroll", err)
		return
	}
	price, err := parseAmount(req.Price, "price")
	if err != nil {
		s.writeError(w, "marketplace.enroll", err)
		return
	}
	s.invoke(w, r, "marketplace.enroll", true, func(env *core.Env) (interface{}, error) {
		item, err := env.Marketplace.Enroll(seller, asset, req.TokenID, price)
		if err != nil {
			return nil, err
		}
		return newMarketItemView(item), nil
	})
}

func (s *Server) handleMarketPurchase(w http.ResponseWriter, r *http.Request) {
	buyer, err := caller(r)
	if err != nil {
		s.writeError(w, "marketplace.purchase", err)
		return
	}
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "marketplace.purchase", err)
		return
	}
	var req paymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, "marketplace.purchase", err)
		return
	}
	payment, err := parseAmount(req.Payment, "payment")
	if err != nil {
		s.writeError(w, "marketplace.purchase", err)
		return
	}
	s.invoke(w, r, "marketplace.purchase", true, func(env *core.Env) (interface{}, error) {
		item, err := env.Marketplace.Purchase(buyer, id, payment)
		if err != nil {
			return nil, err
		}
		return newMarketItemView(item), nil
	})
}

func (s *Server) handleMarketItem(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "marketplace.item", err)
		return
	}
	s.invoke(w, r, "marketplace.item", false, func(env *core.Env) (interface{}, error) {
		item, err := env.Marketplace.Item(id)
		if err != nil {
			return nil, err
		}
		return newMarketItemView(item), nil
	})
}

func (s *Server) handleMarketTotalPrice(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		s.writeError(w, "marketplace.total_price", err)
		return
	}
	s.invoke(w, r, "marketplace.total_price", false, func(env *core.Env) (interface{}, error) {
		total, err := env.Marketplace.TotalPrice(id)
		if err != nil {
			return nil, err
		}
		return newAmountView(total), nil
	})
}
