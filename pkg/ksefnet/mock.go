package ksefnet

import (
	"context"
	"fmt"
)

// MockClient is a mock portal client for testing
type MockClient struct {
	entries        []PortalEntry
	baseURL        string
	fetchErr       error
	submitErr      error
	loginErr       error
	submitted      []ProjectEntry
	nextEntryID    int // counter for generating new entry IDs
	credentialsSet bool
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithEntries sets the portal entries to return
func WithEntries(entries []PortalEntry) MockOption {
	return func(m *MockClient) {
		m.entries = entries
	}
}

// WithFetchError sets an error to return from FetchEntries
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// WithSubmitError sets an error to return from SubmitEntry
func WithSubmitError(err error) MockOption {
	return func(m *MockClient) {
		m.submitErr = err
	}
}

// WithLoginError sets an error to return from Login
func WithLoginError(err error) MockOption {
	return func(m *MockClient) {
		m.loginErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock portal client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:     "http://mock-ksef-portal.local",
		nextEntryID: 100, // Start at 100 to avoid conflicts with preloaded entries
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// SetEntries replaces the portal entries returned by FetchEntries
func (m *MockClient) SetEntries(entries []PortalEntry) {
	m.entries = entries
}

// SetCredentials configures authentication credentials
func (m *MockClient) SetCredentials(username, password string) {
	m.credentialsSet = true
}

// Login simulates portal authentication (always succeeds unless error is set)
func (m *MockClient) Login(ctx context.Context, username, password string) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	return nil
}

// FetchEntries returns the configured mock entries or error
func (m *MockClient) FetchEntries(ctx context.Context) ([]PortalEntry, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.entries, nil
}

// SubmitEntry records a submission in the mock client and returns its ID
func (m *MockClient) SubmitEntry(ctx context.Context, entry ProjectEntry) (int, error) {
	// Simulate authentication failure if credentials were set and loginErr is set
	if m.credentialsSet && m.loginErr != nil {
		return 0, fmt.Errorf("failed to authenticate: %w", m.loginErr)
	}

	if m.submitErr != nil {
		return 0, m.submitErr
	}

	m.nextEntryID++
	m.submitted = append(m.submitted, entry)
	m.entries = append(m.entries, PortalEntry{
		EntryID:            m.nextEntryID,
		RegistrationNumber: FlexString(entry.RegistrationNumber),
		Title:              entry.Title,
		Category:           entry.Category,
		Region:             entry.Region,
	})
	return m.nextEntryID, nil
}

// Submitted returns the entries submitted so far (for testing)
func (m *MockClient) Submitted() []ProjectEntry {
	return m.submitted
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
