package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// MockTransport is a scripted Transport for testing.
// Responses are queued per method and path; the last queued response for a
// path is repeated once the queue is drained.
type MockTransport struct {
	mu sync.Mutex

	// Track calls for assertions
	Calls []Call

	responses map[string][]any
	errors    map[string]error
}

// Call records a call to Get or Post
type Call struct {
	Method    string
	Path      string
	Body      any
	Timestamp time.Time
}

// Ensure MockTransport implements the Transport interface
var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string][]any),
		errors:    make(map[string]error),
	}
}

func key(method, path string) string {
	return method + " " + path
}

// OnGet queues responses for GET path, returned in order
func (m *MockTransport) OnGet(path string, responses ...any) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(http.MethodGet, path)
	m.responses[k] = append(m.responses[k], responses...)
	return m
}

// OnPost queues responses for POST path, returned in order
func (m *MockTransport) OnPost(path string, responses ...any) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(http.MethodPost, path)
	m.responses[k] = append(m.responses[k], responses...)
	return m
}

// FailGet makes every GET of path return err
func (m *MockTransport) FailGet(path string, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key(http.MethodGet, path)] = err
	return m
}

// FailPost makes every POST of path return err
func (m *MockTransport) FailPost(path string, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key(http.MethodPost, path)] = err
	return m
}

// Get implements Transport
func (m *MockTransport) Get(ctx context.Context, path string, out any) error {
	return m.handle(ctx, http.MethodGet, path, nil, out)
}

// Post implements Transport
func (m *MockTransport) Post(ctx context.Context, path string, body, out any) error {
	return m.handle(ctx, http.MethodPost, path, body, out)
}

func (m *MockTransport) handle(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Method: method, Path: path, Body: body, Timestamp: time.Now()})

	k := key(method, path)
	if err, ok := m.errors[k]; ok {
		m.mu.Unlock()
		return err
	}

	queue := m.responses[k]
	if len(queue) == 0 {
		m.mu.Unlock()
		return &APIError{Method: method, Path: path, StatusCode: http.StatusNotFound, Detail: "no mock response"}
	}
	resp := queue[0]
	if len(queue) > 1 {
		m.responses[k] = queue[1:]
	}
	m.mu.Unlock()

	if out == nil {
		return nil
	}
	// Round-trip through JSON so callers see the same decoding as over HTTP
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("mock: failed to marshal response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Method: method, Path: path, Body: data, Err: err}
	}
	return nil
}

// CallsTo returns the recorded calls for method and path
func (m *MockTransport) CallsTo(method, path string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []Call
	for _, c := range m.Calls {
		if c.Method == method && c.Path == path {
			calls = append(calls, c)
		}
	}
	return calls
}

// Reset clears all state for a fresh test
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.responses = make(map[string][]any)
	m.errors = make(map[string]error)
}
