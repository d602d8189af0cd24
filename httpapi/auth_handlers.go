package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *server) register(c *gin.Context) {
	var req registerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondMessage(c, http.StatusBadRequest, statusError, bindErr.Error())
		return
	}

	token, registerErr := s.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.IsAdmin)
	if registerErr != nil {
		respondError(c, registerErr)
		return
	}

	writeJSON(c, http.StatusCreated, authResponse{
		Status:    statusSuccess,
		Message:   "successfully registered",
		AuthToken: token,
	})
}

func (s *server) login(c *gin.Context) {
	var req loginRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondMessage(c, http.StatusBadRequest, statusError, bindErr.Error())
		return
	}

	token, loginErr := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if loginErr != nil {
		respondError(c, loginErr)
		return
	}

	writeJSON(c, http.StatusOK, authResponse{
		Status:    statusSuccess,
		Message:   "successfully logged in",
		AuthToken: token,
	})
}

func (s *server) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondMessage(c, http.StatusUnauthorized, statusError, "provide a valid auth token")
		return
	}

	if logoutErr := s.auth.Logout(c.Request.Context(), token); logoutErr != nil {
		respondError(c, logoutErr)
		return
	}

	respondMessage(c, http.StatusOK, statusSuccess, "successfully logged out")
}
