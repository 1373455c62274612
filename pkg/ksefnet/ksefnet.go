// Package ksefnet provides a client for the national KSEF portal, used to
// register regionally promoted projects for the national fair.
package ksefnet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/scifair/fairjudge/internal/logger"
)

// FlexString is a string type that can be unmarshaled from either a string or
// a number. Some portal deployments return numeric fields inconsistently.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	// Handle null first (before other unmarshal attempts)
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	// Try number (int or float)
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// ProjectEntry is one project submitted to the national portal.
type ProjectEntry struct {
	RegistrationNumber string   `json:"registration_number"`
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	School             string   `json:"school"`
	Region             string   `json:"region"`
	County             string   `json:"county"`
	SubCounty          string   `json:"sub_county"`
	Zone               string   `json:"zone"`
	Students           []string `json:"students,omitempty"`
	TotalScore         float64  `json:"total_score"`
	CategoryRank       int      `json:"category_rank"`
}

// PortalEntry is a project already registered on the portal.
type PortalEntry struct {
	EntryID            int        `json:"entryid"`
	RegistrationNumber FlexString `json:"registration_number"`
	Title              string     `json:"title"`
	Category           string     `json:"category"`
	Region             string     `json:"region"`
}

// EntryListResponse is the response from the entry.list API
type EntryListResponse struct {
	Entries []PortalEntry `json:"entries"`
}

// Outcome represents the outcome/status from a portal API call
type Outcome struct {
	Summary     string `json:"summary"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SubmitResponse is the response from submitting an entry
type SubmitResponse struct {
	EntryID int     `json:"entryid"`
	Outcome Outcome `json:"outcome"`
}

// GenericResponse is a generic portal API response with outcome
type GenericResponse struct {
	Outcome Outcome `json:"outcome"`
}

// Client defines the interface for national portal operations
type Client interface {
	// Login authenticates with the portal using a regional admin account
	Login(ctx context.Context, username, password string) error
	// SetCredentials configures authentication credentials for automatic login
	SetCredentials(username, password string)
	// FetchEntries retrieves the entries already registered on the portal
	FetchEntries(ctx context.Context) ([]PortalEntry, error)
	// SubmitEntry registers a project on the portal and returns the new entry ID
	SubmitEntry(ctx context.Context, entry ProjectEntry) (int, error)
	// BaseURL returns the configured portal base URL
	BaseURL() string
	// SetBaseURL updates the portal base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for the national portal
type HTTPClient struct {
	baseURL       string
	httpClient    *http.Client
	log           logger.Logger
	username      string
	password      string
	authenticated bool
}

// NewHTTPClient creates a new portal HTTP client with cookie support
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL: baseURL,
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
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured portal base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the portal base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetCredentials configures authentication credentials for automatic login
func (c *HTTPClient) SetCredentials(username, password string) {
	c.username = username
	c.password = password
	c.authenticated = false // Reset auth state when credentials change
}

// doRequest executes an HTTP POST request to the portal and handles common
// error checking: HTTP status, JSON parsing, and the outcome envelope.
// Automatically re-authenticates if the session has expired.
func (c *HTTPClient) doRequest(ctx context.Context, action string, params url.Values, response interface{}) error {
	// Ensure we're authenticated before making the request
	if !c.authenticated && c.username != "" && c.password != "" {
		c.log.Debug("Not authenticated, logging in before request")
		if err := c.Login(ctx, c.username, c.password); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	apiURL := fmt.Sprintf("%s/api/portal.php", c.baseURL)
	params.Set("action", action)

	c.log.Debug("Portal request", "method", "POST", "url", apiURL, "action", action, "body", params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to portal: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Portal response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("portal returned status %d: %s", resp.StatusCode, string(body))
	}

	// First check if there's a failure outcome
	var outcomeCheck struct {
		Outcome Outcome `json:"outcome"`
	}
	if err := json.Unmarshal(body, &outcomeCheck); err == nil {
		// If we get "notauthorized", try to re-authenticate and retry once
		if outcomeCheck.Outcome.Code == "notauthorized" && c.username != "" && c.password != "" {
			c.log.Debug("Session expired, re-authenticating")
			c.authenticated = false
			if err := c.Login(ctx, c.username, c.password); err != nil {
				return fmt.Errorf("failed to re-authenticate: %w", err)
			}
			// Retry the original request
			return c.doRequest(ctx, action, params, response)
		}

		if outcomeCheck.Outcome.Summary == "failure" {
			return fmt.Errorf("portal error: %s (%s)", outcomeCheck.Outcome.Description, outcomeCheck.Outcome.Code)
		}
	}

	// Parse the full response into the provided struct
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// LoginResponse represents the response from a portal login
type LoginResponse struct {
	Outcome Outcome `json:"outcome"`
}

// Login authenticates with the portal and stores credentials for re-use
func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	params := url.Values{}
	params.Set("username", username)
	params.Set("password", password)

	apiURL := fmt.Sprintf("%s/api/portal.php", c.baseURL)
	params.Set("action", "auth.login")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to portal: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Portal login response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("portal returned status %d: %s", resp.StatusCode, string(body))
	}

	var response LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	if response.Outcome.Summary == "failure" {
		return fmt.Errorf("portal login failed: %s (%s)", response.Outcome.Description, response.Outcome.Code)
	}

	// Save credentials for re-authentication
	c.username = username
	c.password = password
	c.authenticated = true

	c.log.Info("Portal login successful", "username", username)
	return nil
}

// FetchEntries retrieves the entries already registered on the portal
func (c *HTTPClient) FetchEntries(ctx context.Context) ([]PortalEntry, error) {
	reqURL := fmt.Sprintf("%s/api/portal.php?query=entry.list", c.baseURL)

	c.log.Debug("Portal request", "method", "GET", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to portal: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Portal response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal returned status %d", resp.StatusCode)
	}

	var response EntryListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Entries, nil
}

// SubmitEntry registers a project on the portal and returns the new entry ID
func (c *HTTPClient) SubmitEntry(ctx context.Context, entry ProjectEntry) (int, error) {
	params := url.Values{}
	params.Set("registration_number", entry.RegistrationNumber)
	params.Set("title", entry.Title)
	params.Set("category", entry.Category)
	params.Set("school", entry.School)
	params.Set("region", entry.Region)
	params.Set("county", entry.County)
	params.Set("sub_county", entry.SubCounty)
	params.Set("zone", entry.Zone)
	params.Set("students", strings.Join(entry.Students, ";"))
	params.Set("total_score", fmt.Sprintf("%.2f", entry.TotalScore))
	params.Set("category_rank", fmt.Sprintf("%d", entry.CategoryRank))

	var response SubmitResponse
	if err := c.doRequest(ctx, "entry.submit", params, &response); err != nil {
		return 0, err
	}

	if response.EntryID == 0 {
		return 0, fmt.Errorf("entry submitted but ID missing in response (registration %q)", entry.RegistrationNumber)
	}

	return response.EntryID, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
