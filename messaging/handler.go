package messaging

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	apperrors "github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/server"
	"github.com/TestimonyAdegoke/montessa-sub006/server/middleware"
)

// Handler exposes the messaging HTTP API. Routes expect the auth
// middleware to have run.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on rg. Notifications are limited to admin and
// staff callers.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.POST("/messages", h.Send)
	rg.GET("/messages", h.List)
	rg.POST("/messages/:id/read", h.MarkRead)
	rg.POST("/notifications", middleware.RequireRole(auth.RoleAdmin, auth.RoleStaff), h.Notify)
}

type sendRequest struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
}

// Send handles POST /messages.
func (h *Handler) Send(c *gin.Context) {
	claims, ok := auth.FromContext(c.Request.Context())
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", "must be a JSON object").WithCause(err))
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), SendInput{
		TenantID:    claims.TenantID,
		SenderID:    claims.UserID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, msg)
}

// List handles GET /messages?with=<userId>&limit=<n>.
func (h *Handler) List(c *gin.Context) {
	claims, ok := auth.FromContext(c.Request.Context())
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			server.RespondWithError(c, apperrors.InvalidInput("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	msgs, err := h.svc.Conversation(c.Request.Context(), claims.TenantID, claims.UserID, c.Query("with"), limit)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondList(c, msgs, len(msgs), normalizeLimit(limit))
}

// MarkRead handles POST /messages/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	claims, ok := auth.FromContext(c.Request.Context())
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("id", "must be a valid UUID"))
		return
	}

	msg, err := h.svc.MarkRead(c.Request.Context(), claims.TenantID, claims.UserID, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, msg)
}

// Notify handles POST /notifications.
func (h *Handler) Notify(c *gin.Context) {
	var req NotifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", "must be a JSON object").WithCause(err))
		return
	}

	res, err := h.svc.Notify(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}
