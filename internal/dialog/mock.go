package dialog

import (
	"context"
	"sync"

	"github.com/astrelay/astrelay/internal/alice"
)

// MockEngine returns canned replies (or a canned error) and records the last
// request for assertions.
type MockEngine struct {
	mu          sync.Mutex
	Reply       *Reply
	Err         error
	lastRequest *alice.Request
}

func NewMockEngine() *MockEngine { return &MockEngine{} }

func (m *MockEngine) Handle(_ context.Context, req *alice.Request) (*Reply, error) {
	m.mu.Lock()
	m.lastRequest = req
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Reply != nil {
		return m.Reply, nil
	}
	return &Reply{Text: "mock reply"}, nil
}

// LastRequest returns the most recent request passed to Handle.
func (m *MockEngine) LastRequest() *alice.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}
