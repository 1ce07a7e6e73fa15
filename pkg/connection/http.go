package connection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/plankhq/plank.go/internal/rand"
	"github.com/plankhq/plank.go/pkg/constants"
	"github.com/plankhq/plank.go/pkg/logger"
)

type HTTPConnection struct {
	config     *Config
	httpClient *http.Client
	logger     logger.Logger
}

func NewHTTPConnection(config *Config) *HTTPConnection {
	log := config.Logger
	if log == nil {
		log = logger.New(nil)
	}
	return &HTTPConnection{
		config: config,
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
		logger: log,
	}
}

// SetHTTPClient replaces the underlying http.Client, for callers that
// need custom transports or timeouts.
func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// Connect validates the configuration and pings the service health
// endpoint, which requires no credentials.
func (h *HTTPConnection) Connect(ctx context.Context) error {
	if err := h.preflight(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.config.BaseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}
	_, err = h.roundTrip(req)
	return err
}

func (h *HTTPConnection) Close() error {
	h.httpClient.CloseIdleConnections()
	return nil
}

func (h *HTTPConnection) Do(ctx context.Context, req *Request, dest any) error {
	if err := h.preflight(); err != nil {
		return err
	}
	if h.config.Key == "" || h.config.Token == "" {
		return constants.ErrNoCredentials
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		data, err := h.config.Marshaler.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, h.requestURL(req), body)
	if err != nil {
		return err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := rand.String(constants.RequestIDLength)
	httpReq.Header.Set("X-Request-ID", requestID)

	h.logger.Debug("request", "id", requestID, "method", method, "path", req.Path)

	respData, err := h.roundTrip(httpReq)
	if err != nil {
		h.logger.Debug("request failed", "id", requestID, "error", err.Error())
		return err
	}

	if dest == nil {
		return nil
	}
	if err := h.config.Unmarshaler.Unmarshal(respData, dest); err != nil {
		return fmt.Errorf("%w: %v", constants.ErrInvalidResponse, err)
	}
	return nil
}

func (h *HTTPConnection) preflight() error {
	if h.config.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if h.config.Marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if h.config.Unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	return nil
}

func (h *HTTPConnection) requestURL(req *Request) string {
	query := url.Values{}
	for k, vs := range req.Query {
		query[k] = vs
	}
	query.Set("key", h.config.Key)
	query.Set("token", h.config.Token)

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.config.BaseURL + path + "?" + query.Encode()
}

func (h *HTTPConnection) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respData, nil
	}

	apiErr := &APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get("X-Request-ID"),
	}
	// Error bodies are either a JSON document or a bare message.
	if err := h.config.Unmarshaler.Unmarshal(respData, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(respData))
	}
	apiErr.Status = resp.StatusCode
	return nil, apiErr
}
