package portal

import (
	"context"
	"sync"

	"github.com/abrezinsky/hypervision/internal/models"
)

// MockClient is an in-memory portal client for testing
type MockClient struct {
	mu          sync.Mutex
	summary     models.Summary
	statuses    map[models.OptionID]models.OptionStatus
	participant string
	selected    map[string]models.OptionID
	baseURL     string
	sessionErr  error
	selectErr   error
	summaryErr  error
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithSummary sets the summary to return
func WithSummary(summary models.Summary) MockOption {
	return func(m *MockClient) {
		m.summary = summary
		for _, st := range summary.PerOption {
			m.statuses[st.ID] = st
		}
	}
}

// WithSessionError sets an error to return from BeginSession
func WithSessionError(err error) MockOption {
	return func(m *MockClient) {
		m.sessionErr = err
	}
}

// WithSelectError sets an error to return from Select
func WithSelectError(err error) MockOption {
	return func(m *MockClient) {
		m.selectErr = err
	}
}

// WithSummaryError sets an error to return from Summary and Status
func WithSummaryError(err error) MockOption {
	return func(m *MockClient) {
		m.summaryErr = err
	}
}

// NewMockClient creates a new mock client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		statuses: make(map[models.OptionID]models.OptionStatus),
		selected: make(map[string]models.OptionID),
		baseURL:  "http://mock-portal",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BeginSession implements Client
func (m *MockClient) BeginSession(ctx context.Context, name string) (*models.SessionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	m.participant = name
	result := &models.SessionResult{Participant: name}
	if id, ok := m.selected[name]; ok {
		result.AlreadySelected = true
		result.OptionID = id
		result.OptionName = m.statuses[id].Name
	}
	return result, nil
}

// Select implements Client
func (m *MockClient) Select(ctx context.Context, optionID models.OptionID) (*SelectResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	if m.participant == "" {
		return nil, &APIError{Status: 401, Code: CodeNoSession, Message: "no active session"}
	}
	if _, ok := m.selected[m.participant]; ok {
		return nil, &APIError{Status: 409, Code: CodeAlreadySelected, Message: "already selected"}
	}
	st, ok := m.statuses[optionID]
	if !ok {
		return nil, &APIError{Status: 400, Code: CodeUnknownOption, Message: "unknown option"}
	}
	if st.Capacity > 0 && st.Count >= st.Capacity {
		return nil, &APIError{Status: 409, Code: CodeOptionFull, Message: "option full"}
	}

	st.Count++
	m.statuses[optionID] = st
	m.selected[m.participant] = optionID
	m.summary.TotalSelections++
	m.summary.DistinctParticipants++
	if m.summary.AvailableSlots > 0 {
		m.summary.AvailableSlots--
	}

	return &SelectResult{
		SelectionResult: models.SelectionResult{
			Participant: m.participant,
			OptionID:    optionID,
			OptionName:  st.Name,
			Count:       st.Count,
		},
		Summary: m.summary,
	}, nil
}

// Summary implements Client
func (m *MockClient) Summary(ctx context.Context) (*models.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	s := m.summary
	return &s, nil
}

// OptionStatus implements Client
func (m *MockClient) OptionStatus(ctx context.Context, optionID models.OptionID) (*models.OptionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.statuses[optionID]
	if !ok {
		return nil, &APIError{Status: 400, Code: CodeUnknownOption, Message: "unknown option"}
	}
	return &st, nil
}

// Status implements Client
func (m *MockClient) Status(ctx context.Context) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return &Status{AllFull: m.summary.AllFull}, nil
}

// BaseURL implements Client
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

var _ Client = (*MockClient)(nil)
