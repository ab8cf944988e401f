package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vroo/hr-tracker/internal/notifier"
	subscribersvc "github.com/vroo/hr-tracker/internal/service/subscriber"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
	"github.com/vroo/hr-tracker/pkg/httputil"
	"github.com/vroo/hr-tracker/pkg/logger"
)

// telegramUpdate is the slice of the Bot API update we care about.
type telegramUpdate struct {
	Message struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"from"`
	} `json:"message"`
}

type TelegramHandler struct {
	subs     *subscribersvc.Service
	notifier notifier.Notifier
	token    string
	logger   *logger.Logger
}

func NewTelegramHandler(subs *subscribersvc.Service, n notifier.Notifier, token string, log *logger.Logger) *TelegramHandler {
	return &TelegramHandler{subs: subs, notifier: n, token: token, logger: log}
}

// Webhook handles Bot API updates. Telegram retries on any non-200, so the
// handler acknowledges every delivery, bad token and malformed body included.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	defer c.Status(http.StatusOK)

	if c.Param("token") != h.token {
		h.logger.ZL.Warn().Msg("telegram webhook called with wrong token")
		return
	}

	var update telegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.ZL.Warn().Err(err).Msg("malformed telegram update")
		return
	}

	if !strings.HasPrefix(update.Message.Text, "/start") || update.Message.Chat.ID == 0 {
		return
	}

	err := h.subs.Subscribe(c.Request.Context(),
		update.Message.Chat.ID,
		update.Message.From.Username,
		update.Message.From.FirstName,
		update.Message.From.LastName,
	)
	if err != nil {
		h.logger.ZL.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("failed to subscribe chat")
		return
	}

	if err := h.notifier.Send(c.Request.Context(), update.Message.Chat.ID,
		"Subscribed. You will receive interview and birthday reminders here."); err != nil {
		h.logger.ZL.Warn().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("failed to send welcome")
	}
}

type broadcastRequest struct {
	Text string `json:"text" binding:"required"`
}

// Broadcast sends an ad-hoc message to every enabled subscriber.
func (h *TelegramHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	subs, err := h.subs.ListEnabled(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	delivered := 0
	for _, sub := range subs {
		if err := h.notifier.Send(c.Request.Context(), sub.ChatID, req.Text); err != nil {
			h.logger.ZL.Warn().Err(err).Int64("chat_id", sub.ChatID).Msg("broadcast delivery failed")
			continue
		}
		delivered++
	}
	httputil.RespondWithSuccess(c, gin.H{"subscribers": len(subs), "delivered": delivered})
}
