package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RESTTransport calls the v1beta generateContent endpoint directly, passing
// the credential as the "key" query parameter.
type RESTTransport struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewRESTTransport(baseURL, model, apiKey string, httpClient *http.Client) *RESTTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (t *RESTTransport) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		t.baseURL, url.PathEscape(t.model), url.QueryEscape(t.apiKey))
}

func (t *RESTTransport) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", t.redact(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", t.redact(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody upstreamErrorBody
		message := ""
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != nil {
			message = errBody.Error.Message
		}
		return "", newUpstreamError(resp.StatusCode, message)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	return parsed.firstText(), nil
}

func (t *RESTTransport) Close() error {
	return nil
}

// redact strips the credential from URLs embedded in transport errors so it never reaches the logs.
func (t *RESTTransport) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && t.apiKey != "" {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(t.apiKey), "REDACTED")
	}
	return err
}
