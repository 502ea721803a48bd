// Package client calls a running relay over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"persona-relay/internal/models"
)

// StatusError is a non-2xx answer from the relay.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relay returned status %d", e.Status)
	}
	return fmt.Sprintf("relay returned status %d: %s", e.Status, e.Message)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// Send posts the whole transcript to /api/chat and returns the reply text.
func (c *Client) Send(ctx context.Context, messages []models.Message) (string, error) {
	if messages == nil {
		messages = []models.Message{}
	}
	body, err := json.Marshal(models.ChatRequest{Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp models.ErrorResponse
		json.Unmarshal(data, &errResp)
		return "", &StatusError{Status: resp.StatusCode, Message: errResp.Error}
	}

	var chatResp models.ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode relay response: %w", err)
	}
	return chatResp.Message, nil
}

// Info is the relay's self-description served at GET /api.
type Info struct {
	Name    string `json:"name"`
	Persona string `json:"persona"`
	Version string `json:"version"`
}

func (c *Client) Info(ctx context.Context) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api", nil)
	if err != nil {
		return Info{}, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, &StatusError{Status: resp.StatusCode}
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("failed to decode relay info: %w", err)
	}
	return info, nil
}
