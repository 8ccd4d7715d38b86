package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session identifies the user a request is made on behalf of. Token is the
// backend-issued bearer token; SocketID correlates REST mutations with the
// user's push channel so the backend can skip echoing events back.
type Session struct {
	UserID   uuid.UUID
	Token    string
	SocketID string
}

// Pagination is the envelope metadata the backend attaches to list responses.
type Pagination struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	LastPage int `json:"last_page"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Client communicates with the remote marketplace API. It injects auth and
// correlation headers and normalizes failures into APIError. There is no
// retry or backoff here; superseded responses are discarded by callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Do issues a JSON request and decodes the response envelope into out.
// A logical failure (success=false inside a 200 body) is returned as an
// APIError just like an HTTP error status.
func (c *Client) Do(ctx context.Context, s Session, method, path string, body any, out any) (*Pagination, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req, s)

	return c.send(req, out)
}

// DoMultipart issues a multipart/form-data request (file messages).
func (c *Client) DoMultipart(ctx context.Context, s Session, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) (*Pagination, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setHeaders(req, s)

	return c.send(req, out)
}

func (c *Client) setHeaders(req *http.Request, s Session) {
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	if s.SocketID != "" {
		req.Header.Set("X-Socket-ID", s.SocketID)
	}
}

func (c *Client) send(req *http.Request, out any) (*Pagination, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace api unavailable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("marketplace api read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("marketplace api error",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, normalizeStatus(resp.StatusCode, truncate(raw, 512))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("marketplace api decode: %w", err)
	}
	if !env.Success {
		msg := MsgOperationFailed
		if env.Message != "" {
			msg = env.Message
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg, Detail: "success=false"}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("marketplace api decode data: %w", err)
		}
	}
	return env.Pagination, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
