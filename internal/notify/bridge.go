package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eldrix/admin/internal/config"
	"eldrix/admin/internal/ids"
	"eldrix/admin/internal/security"
)

// BridgeClient posts notifications to the SMS bridge with an HMAC-signed
// request.
type BridgeClient struct {
	http   *http.Client
	url    string
	secret string
	now    func() time.Time
}

func NewBridgeClient(cfg config.BridgeConfig) *BridgeClient {
	return &BridgeClient{
		http:   &http.Client{Timeout: cfg.Timeout},
		url:    strings.TrimSuffix(cfg.URL, "/") + "/notify",
		secret: cfg.Secret,
		now:    time.Now,
	}
}

type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.StatusCode, e.Body)
}

func (b *BridgeClient) Notify(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	security.SignRequest(req, b.secret, body, b.now(), ids.New())

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
