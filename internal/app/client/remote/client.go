// Package remote is the thin glue over the passkeeper server API. It
// returns parsed payloads whose encrypted fields are still base64
// ciphertext; encryption and decryption happen on the repository side
// of this boundary.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"passkeeper/internal/model"
)

// Client is the set of server calls the repository depends on. One
// method per use case; each returns a payload or an error.
type Client interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	LoginWithToken(ctx context.Context, token string) (*AuthResult, error)
	Register(ctx context.Context, username, password string) (*AuthResult, error)

	FetchGroups(ctx context.Context) ([]model.Group, error)
	FetchRecords(ctx context.Context) ([]model.Record, error)

	CreateGroup(ctx context.Context, name, comment string) (model.Group, error)
	UpdateGroup(ctx context.Context, id int64, name, comment string) (model.Group, error)
	DeleteGroup(ctx context.Context, id int64) error

	CreateRecord(ctx context.Context, r model.Record) (model.Record, error)
	UpdateRecord(ctx context.Context, r model.Record) (model.Record, error)
	DeleteRecord(ctx context.Context, id int64) error

	SetToken(token string)
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string

	mu    sync.RWMutex
	token string
}

// NewHTTPClient builds the production Client over net/http.
func NewHTTPClient(serverAddress string, enableTLS bool, log *slog.Logger) *httpClient {
	scheme := "http://"
	if enableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:       log,
		baseURL:   scheme + serverAddress,
		userAgent: "PassKeeper-Client/1.0",
	}
}

// SetToken installs the bearer token used on subsequent calls.
func (h *httpClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *httpClient) currentToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpClient) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var result AuthResult
	err := h.call(ctx, "POST", "/api/v1/auth/login", credentialsRequest{
		Username: username,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}

	h.SetToken(result.Token)
	return &result, nil
}

func (h *httpClient) LoginWithToken(ctx context.Context, token string) (*AuthResult, error) {
	h.SetToken(token)

	var result AuthResult
	if err := h.call(ctx, "POST", "/api/v1/auth/token", nil, &result); err != nil {
		h.SetToken("")
		return nil, err
	}

	h.SetToken(result.Token)
	return &result, nil
}

func (h *httpClient) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	var result AuthResult
	err := h.call(ctx, "POST", "/api/v1/auth/register", credentialsRequest{
		Username: username,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}

	h.SetToken(result.Token)
	return &result, nil
}

func (h *httpClient) FetchGroups(ctx context.Context) ([]model.Group, error) {
	var result struct {
		Groups []model.Group `json:"groups"`
	}
	if err := h.call(ctx, "GET", "/api/v1/groups", nil, &result); err != nil {
		return nil, err
	}
	return result.Groups, nil
}

func (h *httpClient) FetchRecords(ctx context.Context) ([]model.Record, error) {
	var result struct {
		Records []model.Record `json:"records"`
	}
	if err := h.call(ctx, "GET", "/api/v1/records", nil, &result); err != nil {
		return nil, err
	}
	return result.Records, nil
}

func (h *httpClient) CreateGroup(ctx context.Context, name, comment string) (model.Group, error) {
	var created model.Group
	err := h.call(ctx, "POST", "/api/v1/groups", groupRequest{Name: name, Comment: comment}, &created)
	return created, err
}

func (h *httpClient) UpdateGroup(ctx context.Context, id int64, name, comment string) (model.Group, error) {
	var updated model.Group
	path := fmt.Sprintf("/api/v1/groups/%d", id)
	err := h.call(ctx, "PUT", path, groupRequest{Name: name, Comment: comment}, &updated)
	return updated, err
}

func (h *httpClient) DeleteGroup(ctx context.Context, id int64) error {
	return h.call(ctx, "DELETE", fmt.Sprintf("/api/v1/groups/%d", id), nil, nil)
}

func (h *httpClient) CreateRecord(ctx context.Context, r model.Record) (model.Record, error) {
	var created model.Record
	err := h.call(ctx, "POST", "/api/v1/records", recordPayload(r), &created)
	return created, err
}

func (h *httpClient) UpdateRecord(ctx context.Context, r model.Record) (model.Record, error) {
	var updated model.Record
	path := fmt.Sprintf("/api/v1/records/%d", r.ID)
	err := h.call(ctx, "PUT", path, recordPayload(r), &updated)
	return updated, err
}

func (h *httpClient) DeleteRecord(ctx context.Context, id int64) error {
	return h.call(ctx, "DELETE", fmt.Sprintf("/api/v1/records/%d", id), nil, nil)
}

func recordPayload(r model.Record) recordRequest {
	return recordRequest{
		GroupID:  r.GroupID,
		Title:    r.Title,
		Username: r.Username,
		Secret:   r.Secret,
		Link:     r.Link,
		Note:     r.Note,
	}
}

// call performs one request/response cycle: JSON body in, JSON body
// out, bearer auth, error envelope mapping.
func (h *httpClient) call(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := h.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	h.log.Debug("received response", "method", method, "url", req.URL.String(), "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope errorResponse
		if err := json.Unmarshal(data, &envelope); err == nil {
			apiErr.Reason = envelope.Error
		}
		return apiErr
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
