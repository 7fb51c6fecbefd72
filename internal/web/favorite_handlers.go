package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/trade-marketplace/internal/domain"
)

type favoriteRequest struct {
	TradeID string `json:"trade_id"`
}

func (s *Server) createFavorite(cn *gin.Context) {
	var req favoriteRequest
	if err := cn.ShouldBindJSON(&req); err != nil {
		respondFail(cn, http.StatusBadRequest, "invalid request body")
		return
	}

	fav, err := s.favorites.Create(cn.Request.Context(), principalFrom(cn), req.TradeID)
	if err != nil {
		s.respondError(cn, "CreateFavorite", err)
		return
	}
	respondData(cn, http.StatusCreated, fav)
}

func (s *Server) listFavorites(cn *gin.Context) {
	favs, err := s.favorites.List(cn.Request.Context(), principalFrom(cn))
	if err != nil {
		s.respondError(cn, "ListFavorites", err)
		return
	}
	if favs == nil {
		favs = []*domain.Favorite{}
	}
	respondList(cn, len(favs), favs)
}

func (s *Server) deleteFavorite(cn *gin.Context) {
	if err := s.favorites.Delete(cn.Request.Context(), principalFrom(cn), cn.Param("id")); err != nil {
		s.respondError(cn, "DeleteFavorite", err)
		return
	}
	respondData(cn, http.StatusOK, gin.H{})
}
