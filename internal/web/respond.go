package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/domain"
	"github.com/example/trade-marketplace/internal/fiscal"
	favsvc "github.com/example/trade-marketplace/internal/service/favorite"
	tradesvc "github.com/example/trade-marketplace/internal/service/trade"
	"github.com/example/trade-marketplace/internal/storage"
)

// envelope is the uniform response shape: a success flag, a count for
// collections, and either data or an error message.
type envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondData(cn *gin.Context, status int, data any) {
	cn.JSON(status, envelope{Success: true, Data: data})
}

func respondList(cn *gin.Context, count int, data any) {
	cn.JSON(http.StatusOK, envelope{Success: true, Count: &count, Data: data})
}

func respondFail(cn *gin.Context, status int, msg string) {
	cn.JSON(status, envelope{Success: false, Error: msg})
}

// respondError maps workflow errors onto statuses. Anything unrecognized is
// logged and reported as a bare 500 so internals never leak.
func (s *Server) respondError(cn *gin.Context, where string, err error) {
	switch {
	case errors.Is(err, favsvc.ErrTradeNotFound):
		respondFail(cn, http.StatusNotFound, "Trade not found")
	case errors.Is(err, storage.ErrNotFound):
		respondFail(cn, http.StatusNotFound, "Resource not found")
	case errors.Is(err, tradesvc.ErrForbidden), errors.Is(err, favsvc.ErrForbidden):
		respondFail(cn, http.StatusForbidden, err.Error())
	case errors.Is(err, favsvc.ErrAlreadyFavorited):
		respondFail(cn, http.StatusConflict, err.Error())
	case errors.Is(err, favsvc.ErrMissingTrade), errors.Is(err, domain.ErrInvalid):
		respondFail(cn, http.StatusBadRequest, err.Error())
	case errors.Is(err, fiscal.ErrUpstream):
		s.logger.Error("fiscalization failure", zap.String("where", where), zap.Error(err))
		respondFail(cn, http.StatusBadGateway, "fiscalization failed")
	default:
		s.logger.Error("internal_error", zap.String("where", where), zap.Error(err))
		respondFail(cn, http.StatusInternalServerError, "Server Error")
	}
}
