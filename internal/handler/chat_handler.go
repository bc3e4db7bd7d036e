package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scribeconnect/scribe-portal-api/internal/service"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
	"github.com/scribeconnect/scribe-portal-api/pkg/response"
)

// ChatHandler mints room tokens for the external messaging provider.
type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatTokenRequest struct {
	ExamRequestID string `json:"examRequestId"`
}

// Token godoc
// @Summary Issue a chat room token for a booking
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body chatTokenRequest true "Exam request id"
// @Success 200 {object} service.ChatToken
// @Router /chat/token [post]
func (h *ChatHandler) Token(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req chatTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	token, err := h.chat.Token(c.Request.Context(), claims.UserID, claims.Role, req.ExamRequestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token)
}
