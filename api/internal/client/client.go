package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
)

const maxReplyBytes = 8 << 20

// APIError is an error reported by the gateway, either as a non-2xx status
// or as an {"error": ...} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d", e.Status)
	}
	return e.Message
}

// Client calls the gateway's HTTP API.
type Client struct {
	BaseURL string

	httpc *http.Client
	log   logging.Logger
}

func New(baseURL string) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 150 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   10,
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Transport: tr},
		log:     logging.Nop{},
	}
}

func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.httpc = h
	}
	return c
}

func (c *Client) WithLogger(l logging.Logger) *Client {
	if l != nil {
		c.log = l
	}
	return c
}

func (c *Client) Scan(ctx context.Context, req types.ScanRequest) (types.ScanResult, error) {
	var out types.ScanResult
	err := c.post(ctx, "/v1/scan", req, &out)
	return out, err
}

func (c *Client) Transcribe(ctx context.Context, req types.TranscribeRequest) (types.TranscribeResponse, error) {
	var out types.TranscribeResponse
	err := c.post(ctx, "/v1/transcribe", req, &out)
	return out, err
}

func (c *Client) GenerateLesson(ctx context.Context, req types.LessonRequest) (types.LessonResponse, error) {
	var out types.LessonResponse
	err := c.post(ctx, "/v1/generate-lesson", req, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	rid := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", rid)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn("gateway unreachable", logging.F("path", path), logging.F("requestId", rid), logging.Err(err))
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var e struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &e)
	if e.Error != "" || resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("gateway error",
			logging.F("path", path),
			logging.F("requestId", rid),
			logging.F("status", resp.StatusCode),
			logging.F("error", e.Error))
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
