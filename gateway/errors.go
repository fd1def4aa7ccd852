package gateway

import (
	"errors"
	"net/http"

	marketerrors "nftmarket/core/errors"
	"nftmarket/gateway/middleware"
)

func statusFor(classified *marketerrors.Error) int {
	switch {
	case classified.Reason == marketerrors.ReasonNoSuchItem, classified.Reason == marketerrors.ReasonNoSuchAsset:
		return http.StatusNotFound
	case classified.Kind == marketerrors.KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	var br badRequest
	if errors.As(err, &br) {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.Problem{Error: "BadRequest", Message: br.msg})
		return
	}
	if classified, ok := marketerrors.As(err); ok {
		middleware.WriteJSON(w, statusFor(classified), middleware.Problem{
			Error:   string(classified.Reason),
			Message: err.Error(),
		})
		return
	}
	s.logger.Error("invocation failed", "operation", op, "error", err)
	middleware.WriteJSON(w, http.StatusInternalServerError, middleware.Problem{Error: "Internal", Message: "internal error"})
}
