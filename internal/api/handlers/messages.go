package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chatty-im/chatty/internal/api/middleware"
	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/store"
	"github.com/chatty-im/chatty/internal/wire"
)

type MessageHandler struct {
	queries *store.Queries
}

func NewMessageHandler(db *sql.DB) *MessageHandler {
	return &MessageHandler{queries: store.New(db)}
}

// ListContacts handles GET /messages/users: every other user, for the
// conversation sidebar.
func (h *MessageHandler) ListContacts(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	users, err := h.queries.ListUsersExcept(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("Failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	resp := make([]wire.User, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}

// GetMessages handles GET /messages/:userId: conversation history with the
// given user, in arrival order.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	otherID := c.Param("userId")

	messages, err := h.queries.ListMessagesBetween(c.Request.Context(), store.ListMessagesBetweenParams{
		UserA: userID,
		UserB: otherID,
	})
	if err != nil {
		logger.Errorf("Failed to list messages: %v", err)
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	resp := make([]wire.Message, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// SendMessage handles POST /messages/send/:userId. It persists the message and
// returns the canonical record. Push delivery to the recipient's live
// connection is the sending client's follow-up step, not this handler's.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	receiverID := c.Param("userId")

	var req wire.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Text == "" && req.Image == "") {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "Message text or image is required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.queries.GetUserByID(ctx, receiverID); err != nil {
		c.JSON(http.StatusNotFound, wire.ErrorResponse{Message: "User not found"})
		return
	}

	msg := store.CreateMessageParams{
		ID:         uuid.NewString(),
		SenderID:   userID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      req.Image,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.queries.CreateMessage(ctx, msg); err != nil {
		logger.Errorf("Failed to create message: %v", err)
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, wire.Message{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		Image:      msg.Image,
		CreatedAt:  msg.CreatedAt.UnixMilli(),
	})
}

func toMessageResponse(m store.Message) wire.Message {
	return wire.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		Image:      m.Image,
		CreatedAt:  m.CreatedAt.UnixMilli(),
	}
}
