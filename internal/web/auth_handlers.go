package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// login issues a bearer token for a known account.
func (s *Server) login(cn *gin.Context) {
	var req loginRequest
	if err := cn.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		respondFail(cn, http.StatusBadRequest, "username is required")
		return
	}

	u, err := s.users.GetByUsername(cn.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondFail(cn, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		s.respondError(cn, "Login", err)
		return
	}
	respondData(cn, http.StatusOK, loginResponse{
		Token:    token,
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	})
}
