package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vroo/hr-tracker/internal/config"
)

// TelegramClient sends messages through the Bot API. Sends are throttled so
// a large broadcast stays under the API rate limit.
type TelegramClient struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

func NewTelegramClient(cfg config.TelegramConfig) *TelegramClient {
	return &TelegramClient{
		baseURL: cfg.APIBase,
		token:   cfg.BotToken,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(cfg.SendsPerSecond), cfg.SendsPerSecond),
	}
}

func (c *TelegramClient) Send(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{
		"chat_id":                  {strconv.FormatInt(chatID, 10)},
		"text":                     {text},
		"parse_mode":               {"HTML"},
		"disable_web_page_preview": {"true"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram responded %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
