package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no SendKey is available.
var ErrNotConfigured = errors.New("serverchan send key not configured")

// ServerChanNotifier pushes messages to WeChat via the Server酱 API.
type ServerChanNotifier struct {
	// SendKey supplies the current key on every send, so a key updated
	// through the settings store takes effect without a restart.
	SendKey func() string
	BaseURL string
	Client  *http.Client
}

// NewServerChanNotifier creates a notifier reading its key from sendKey.
func NewServerChanNotifier(sendKey func() string) *ServerChanNotifier {
	return &ServerChanNotifier{
		SendKey: sendKey,
		BaseURL: "https://sctapi.ftqq.com",
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StaticKey adapts a fixed key to the SendKey function signature.
func StaticKey(key string) func() string {
	return func() string { return key }
}

// Configured reports whether a non-empty SendKey is available.
func (n *ServerChanNotifier) Configured() bool {
	return n.SendKey != nil && n.SendKey() != ""
}

type serverChanResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send pushes one message. The body supports Markdown.
func (n *ServerChanNotifier) Send(title, content string) error {
	if !n.Configured() {
		return ErrNotConfigured
	}
	apiURL := fmt.Sprintf("%s/%s.send", n.BaseURL, n.SendKey())
	form := url.Values{
		"title": {title},
		"desp":  {content},
	}
	resp, err := n.Client.Post(apiURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serverchan API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	var result serverChanResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("serverchan rejected message: code %d, %s", result.Code, result.Message)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
// A missing key fails immediately, retrying cannot fix it.
func (n *ServerChanNotifier) SendWithRetry(ctx context.Context, title, content string, maxRetries int) error {
	if !n.Configured() {
		return ErrNotConfigured
	}
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := n.Send(title, content); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[WARN] ServerChan send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// SendTest pushes a fixed test message so the user can verify the key.
func (n *ServerChanNotifier) SendTest() error {
	now := time.Now().Format("2006-01-02 15:04:05")
	content := fmt.Sprintf("这是一条测试消息\n\n发送时间: %s\n\n如果您收到此消息，说明推送配置成功！", now)
	return n.Send("反转三兄弟 - 测试消息", content)
}
