package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookworm/internal/apiclient"
	"bookworm/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	State     string `json:"state"`
	Anonymous bool   `json:"anonymous"`
	UserID    string `json:"user_id,omitempty"`
}

func sessionView(sm SessionManager) sessionResponse {
	id := sm.Identity()
	return sessionResponse{
		State:     string(sm.State()),
		Anonymous: id.IsAnonymous(),
		UserID:    id.UserID,
	}
}

func sessionStateHandler(sm SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionView(sm))
	}
}

func loginHandler(sm SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
			return
		}
		if err := sm.Login(c.Request.Context(), req.Email, req.Password); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(sm))
	}
}

func logoutHandler(sm SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sm.Logout(c.Request.Context())
		c.JSON(http.StatusOK, sessionView(sm))
	}
}

func profileHandler(sm SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User
		if err := sm.Do(c.Request.Context(), apiclient.MeRequest(), &user); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
