// Package api - клиент REST бэкенда координации. Все запросы несут bearer-токен.
package api

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
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotFound - бэкенд ответил 404
var ErrNotFound = errors.New("not found")

// StatusError - неуспешный HTTP-ответ бэкенда
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %s %s: status %d", e.Method, e.Path, e.Code)
}

// Is позволяет сравнивать 404 с ErrNotFound
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Client - REST клиент
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает клиента для базового адреса вида http://host:5000/api
func NewClient(baseURL, token string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// do выполняет запрос и разбирает JSON-ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := c.logger.WithFields(logrus.Fields{
		"component": "api",
		"method":    method,
		"path":      path,
	})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg messageResponse
		_ = json.Unmarshal(data, &msg)
		log.WithField("status", resp.StatusCode).Warn("Backend returned error status")
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: msg.Message}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	log.Debug("Request completed")
	return nil
}

func incidentPath(id string, suffix ...string) string {
	parts := append([]string{"/incidents", url.PathEscape(id)}, suffix...)
	return strings.Join(parts, "/")
}
