// Package portal provides a client for the Hypervision selection portal API.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/models"
)

// Error codes returned by the portal API
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnknownOption   = "UNKNOWN_OPTION"
	CodeNoSession       = "NO_SESSION"
	CodeAlreadySelected = "ALREADY_SELECTED"
	CodeOptionFull      = "OPTION_FULL"
)

// APIError is a non-2xx response from the portal
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("portal returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("portal error %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == code
}

// SelectResult is returned after a successful selection
type SelectResult struct {
	models.SelectionResult
	Summary models.Summary `json:"summary"`
}

// Status reports whether registration is still open
type Status struct {
	AllFull bool `json:"all_full"`
}

// Client defines the interface for portal operations
type Client interface {
	// BeginSession enters a name and keeps the returned session cookie
	BeginSession(ctx context.Context, name string) (*models.SessionResult, error)
	// Select records a choice for the current session
	Select(ctx context.Context, optionID models.OptionID) (*SelectResult, error)
	// Summary fetches aggregate statistics
	Summary(ctx context.Context) (*models.Summary, error)
	// OptionStatus fetches the status of one option
	OptionStatus(ctx context.Context, optionID models.OptionID) (*models.OptionStatus, error)
	// Status reports whether every option is full
	Status(ctx context.Context) (*Status, error)
	// BaseURL returns the configured portal base URL
	BaseURL() string
}

// HTTPClient is a real HTTP client for the portal
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new portal client with cookie support
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new portal client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured portal base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// doRequest executes a request against the portal API and decodes the JSON
// response into response. Non-2xx responses are returned as *APIError.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, payload, response interface{}) error {
	apiURL := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	c.log.Debug("Portal request", "method", method, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to portal: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Portal response", "status", resp.StatusCode, "body", string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if response == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// BeginSession enters a name on the portal
func (c *HTTPClient) BeginSession(ctx context.Context, name string) (*models.SessionResult, error) {
	var result models.SessionResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/session", map[string]string{"name": name}, &result); err != nil {
		return nil, err
	}
	c.log.Info("Portal session started", "participant", result.Participant, "already_selected", result.AlreadySelected)
	return &result, nil
}

// Select records a choice for the current session
func (c *HTTPClient) Select(ctx context.Context, optionID models.OptionID) (*SelectResult, error) {
	var result SelectResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/select", map[string]string{"option_id": string(optionID)}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Summary fetches aggregate statistics
func (c *HTTPClient) Summary(ctx context.Context) (*models.Summary, error) {
	var summary models.Summary
	if err := c.doRequest(ctx, http.MethodGet, "/api/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// OptionStatus fetches the status of one option
func (c *HTTPClient) OptionStatus(ctx context.Context, optionID models.OptionID) (*models.OptionStatus, error) {
	var status models.OptionStatus
	path := "/api/options/" + url.PathEscape(string(optionID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Status reports whether registration is closed
func (c *HTTPClient) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.doRequest(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

var _ Client = (*HTTPClient)(nil)
