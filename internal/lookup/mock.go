package lookup

import (
	"context"
	"sync"
)

// MockClient is a test double for the Client interface
type MockClient struct {
	mu sync.Mutex

	// Body and Err are returned by every Fetch call
	Body []byte
	Err  error

	FetchCalls int
}

// NewMockClient returns a client that answers with body
func NewMockClient(body string) *MockClient {
	return &MockClient{Body: []byte(body)}
}

// NewFailingMockClient returns a client whose every Fetch fails with err
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{Err: err}
}

// Fetch implements Client
func (m *MockClient) Fetch(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]byte(nil), m.Body...), nil
}
