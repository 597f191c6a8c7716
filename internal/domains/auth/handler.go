package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/shared/response"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		response.BadRequest(c, "username and password are required")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Login successful", resp)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Session handles GET /auth/session
func (h *Handler) Session(c *gin.Context) {
	session, err := h.service.Session(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", session)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := ToHTTPStatus(err)
	if status == http.StatusUnauthorized {
		response.Unauthorized(c, err.Error())
		return
	}
	_ = c.Error(err)
	response.InternalServerError(c, "Internal server error")
}
