package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the LINE Messaging API broadcast endpoint
	DefaultEndpoint = "https://api.line.me/v2/bot/message/broadcast"

	// maxTextRunes is the LINE limit for one text message
	maxTextRunes = 5000

	// maxErrorBody bounds how much of an error response ends up in the error
	maxErrorBody = 1024
)

// Client sends broadcast messages via the LINE Messaging API
type Client struct {
	token         string
	endpoint      string
	httpClient    *http.Client
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	newRetryKey   func() string
}

// NewClient creates a LINE broadcast client. The timeout bounds each request.
func NewClient(token, endpoint string, timeout time.Duration, logger *zap.Logger, textProcessor *utils.TextProcessor) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		token:         token,
		endpoint:      endpoint,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
		textProcessor: textProcessor,
		newRetryKey:   uuid.NewString,
	}
}

type broadcastRequest struct {
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Broadcast sends text to every friend of the LINE official account.
// Errors wrap core.ErrBroadcast.
func (c *Client) Broadcast(ctx context.Context, text string) error {
	body, err := json.Marshal(broadcastRequest{
		Messages: []textMessage{{Type: "text", Text: c.textProcessor.TruncateRunes(text, maxTextRunes)}},
	})
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", core.ErrBroadcast, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", core.ErrBroadcast, err)
	}
	retryKey := c.newRetryKey()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Line-Retry-Key", retryKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request: %w", core.ErrBroadcast, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: LINE API error (status %d): %s", core.ErrBroadcast, resp.StatusCode, string(respBody))
	}

	c.logger.Debug("LINE broadcast accepted",
		zap.Int("status", resp.StatusCode),
		zap.String("retry_key", retryKey),
		zap.String("request_id", resp.Header.Get("X-Line-Request-Id")))

	return nil
}
