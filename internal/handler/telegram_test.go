package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vroo/hr-tracker/internal/model"
	subscribersvc "github.com/vroo/hr-tracker/internal/service/subscriber"
	"github.com/vroo/hr-tracker/pkg/logger"
)

type fakeSubscriberRepo struct {
	upserted []*model.Subscriber
}

func (f *fakeSubscriberRepo) Upsert(_ context.Context, sub *model.Subscriber) error {
	f.upserted = append(f.upserted, sub)
	return nil
}

func (f *fakeSubscriberRepo) SetEnabled(context.Context, int64, bool) error { return nil }

func (f *fakeSubscriberRepo) ListEnabled(context.Context) ([]*model.Subscriber, error) {
	return f.upserted, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(_ context.Context, _ int64, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func newWebhookRouter(repo *fakeSubscriberRepo, sender *fakeSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTelegramHandler(subscribersvc.NewService(repo), sender, "secret-token", logger.Nop())

	r := gin.New()
	r.POST("/telegram/webhook/:token", h.Webhook)
	return r
}

func postWebhook(r *gin.Engine, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/"+token, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTelegramWebhookSubscribesOnStart(t *testing.T) {
	repo := &fakeSubscriberRepo{}
	sender := &fakeSender{}
	r := newWebhookRouter(repo, sender)

	body := `{"message":{"text":"/start","chat":{"id":42},"from":{"username":"olena","first_name":"Olena"}}}`
	w := postWebhook(r, "secret-token", body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, int64(42), repo.upserted[0].ChatID)
	assert.Equal(t, "olena", repo.upserted[0].Username)
	assert.True(t, repo.upserted[0].Enabled)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Subscribed")
}

func TestTelegramWebhookIgnoresOtherMessages(t *testing.T) {
	repo := &fakeSubscriberRepo{}
	r := newWebhookRouter(repo, &fakeSender{})

	w := postWebhook(r, "secret-token", `{"message":{"text":"hello","chat":{"id":42}}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.upserted)
}

func TestTelegramWebhookWrongTokenStillAcknowledged(t *testing.T) {
	repo := &fakeSubscriberRepo{}
	r := newWebhookRouter(repo, &fakeSender{})

	w := postWebhook(r, "wrong", `{"message":{"text":"/start","chat":{"id":42}}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.upserted)
}

func TestTelegramWebhookMalformedBodyStillAcknowledged(t *testing.T) {
	repo := &fakeSubscriberRepo{}
	r := newWebhookRouter(repo, &fakeSender{})

	w := postWebhook(r, "secret-token", `{not json`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.upserted)
}
