package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/trade-marketplace/internal/domain"
	tradesvc "github.com/example/trade-marketplace/internal/service/trade"
)

// tradeRequest is the JSON body accepted by create and update. Pointer
// fields distinguish "absent" from zero values on partial updates; the
// owner and fiscal receipt are deliberately not bindable.
type tradeRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	ItemOffered *string  `json:"item_offered"`
	ItemWanted  *string  `json:"item_wanted"`
	CashAmount  *float64 `json:"cash_amount"`
	Status      *string  `json:"status"`
}

func (r tradeRequest) input() tradesvc.Input {
	return tradesvc.Input{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		ItemOffered: r.ItemOffered,
		ItemWanted:  r.ItemWanted,
		CashAmount:  r.CashAmount,
		Status:      r.Status,
	}
}

func (s *Server) listTrades(cn *gin.Context) {
	limit := parseLimit(cn.Query("limit"), 100, 1, 1000)

	key := fmt.Sprintf("trades:list:%d", limit)
	if cached, ok := s.cache.Get(key); ok {
		if trades, ok := cached.([]*domain.Trade); ok {
			respondList(cn, len(trades), trades)
			return
		}
	}

	trades, err := s.trades.List(cn.Request.Context(), limit)
	if err != nil {
		s.respondError(cn, "ListTrades", err)
		return
	}
	if trades == nil {
		trades = []*domain.Trade{}
	}
	s.cache.Set(key, trades)
	respondList(cn, len(trades), trades)
}

func (s *Server) listUserTrades(cn *gin.Context) {
	userID := cn.Param("userId")

	trades, err := s.trades.ListByUser(cn.Request.Context(), userID)
	if err != nil {
		s.respondError(cn, "ListUserTrades", err)
		return
	}
	if trades == nil {
		trades = []*domain.Trade{}
	}
	respondList(cn, len(trades), trades)
}

func (s *Server) getTrade(cn *gin.Context) {
	id := cn.Param("id")

	key := "trades:get:" + id
	if cached, ok := s.cache.Get(key); ok {
		if tr, ok := cached.(*domain.Trade); ok {
			respondData(cn, http.StatusOK, tr)
			return
		}
	}

	tr, err := s.trades.Get(cn.Request.Context(), id)
	if err != nil {
		s.respondError(cn, "GetTrade", err)
		return
	}
	s.cache.Set(key, tr)
	respondData(cn, http.StatusOK, tr)
}

func (s *Server) createTrade(cn *gin.Context) {
	var req tradeRequest
	if err := cn.ShouldBindJSON(&req); err != nil {
		respondFail(cn, http.StatusBadRequest, "invalid request body")
		return
	}

	tr, err := s.trades.Create(cn.Request.Context(), principalFrom(cn), req.input())
	if err != nil {
		s.respondError(cn, "CreateTrade", err)
		return
	}
	s.cache.Clear()
	respondData(cn, http.StatusCreated, tr)
}

func (s *Server) updateTrade(cn *gin.Context) {
	var req tradeRequest
	if err := cn.ShouldBindJSON(&req); err != nil {
		respondFail(cn, http.StatusBadRequest, "invalid request body")
		return
	}

	tr, err := s.trades.Update(cn.Request.Context(), principalFrom(cn), cn.Param("id"), req.input())
	if err != nil {
		s.respondError(cn, "UpdateTrade", err)
		return
	}
	s.cache.Clear()
	respondData(cn, http.StatusOK, tr)
}

func (s *Server) deleteTrade(cn *gin.Context) {
	if err := s.trades.Delete(cn.Request.Context(), principalFrom(cn), cn.Param("id")); err != nil {
		s.respondError(cn, "DeleteTrade", err)
		return
	}
	s.cache.Clear()
	respondData(cn, http.StatusOK, gin.H{})
}
