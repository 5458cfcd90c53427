package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// sendRequest is the JSON body posted to the mail provider.
type sendRequest struct {
	To         string         `json:"to"`
	TemplateID string         `json:"templateId"`
	Data       map[string]any `json:"data"`
}

// APISender delivers mail through a template-mail HTTP API (SendGrid-style:
// bearer key, JSON body, 202 Accepted on success). The base URL is injected
// from config so tests can point to a local mock.
type APISender struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewAPISender(baseURL, apiKey string, timeout time.Duration) *APISender {
	return &APISender{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *APISender) Send(ctx context.Context, to string, m *Mail) error {
	body, err := json.Marshal(sendRequest{
		To:         to,
		TemplateID: m.TemplateID,
		Data:       m.Data,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected mail provider status: %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that APISender implements Sender
var _ Sender = (*APISender)(nil)
