// Package mocks provides mock implementations for testing.
//
// This package should ONLY be imported in test files (_test.go).
package mocks

import (
	"context"
	"sync"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

// MockRouterClient is a mock implementation of the router client used by the poller.
//
// It allows tests to provide custom behavior for each method through function fields.
// If a function field is nil, a sensible default implementation is used: login
// succeeds with key "mock-key" and every read returns an empty value.
//
// Example usage:
//
//	mock := &MockRouterClient{
//	    StatusFunc: func(ctx context.Context, key string) (ikuai.SystemMetrics, error) {
//	        return ikuai.SystemMetrics{Hostname: "test"}, nil
//	    },
//	}
//	metrics, err := mock.Status(ctx, "key")
type MockRouterClient struct {
	LoginFunc      func(ctx context.Context) (string, error)
	StatusFunc     func(ctx context.Context, key string) (ikuai.SystemMetrics, error)
	WANFunc        func(ctx context.Context, key string) (ikuai.WANInfo, error)
	WAN6Func       func(ctx context.Context, key string) (ikuai.IPv6Info, error)
	LAN6Func       func(ctx context.Context, key string) (ikuai.IPv6Info, error)
	MACControlFunc func(ctx context.Context, key string) ([]ikuai.ACLEntry, error)
	LANHostsFunc   func(ctx context.Context, key string) (*ikuai.HostIndex, error)
	SwitchFunc     func(ctx context.Context, key string, spec ikuai.SwitchSpec) (ikuai.SwitchState, bool, error)
	ExecuteFunc    func(ctx context.Context, key string, req ikuai.Request) (*ikuai.Response, error)

	mu    sync.Mutex
	calls map[string]int
}

// NewMockRouterClient creates a mock with default behavior.
func NewMockRouterClient() *MockRouterClient {
	return &MockRouterClient{}
}

func (m *MockRouterClient) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times method was invoked.
func (m *MockRouterClient) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls returns the number of invocations across all methods.
func (m *MockRouterClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// Login authenticates.
func (m *MockRouterClient) Login(ctx context.Context) (string, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return "mock-key", nil
}

// Status reads system metrics.
func (m *MockRouterClient) Status(ctx context.Context, key string) (ikuai.SystemMetrics, error) {
	m.record("Status")
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, key)
	}
	return ikuai.SystemMetrics{Hostname: "mock"}, nil
}

// WAN reads the default-route WAN line.
func (m *MockRouterClient) WAN(ctx context.Context, key string) (ikuai.WANInfo, error) {
	m.record("WAN")
	if m.WANFunc != nil {
		return m.WANFunc(ctx, key)
	}
	return ikuai.WANInfo{}, nil
}

// WAN6 reads the WAN IPv6 address.
func (m *MockRouterClient) WAN6(ctx context.Context, key string) (ikuai.IPv6Info, error) {
	m.record("WAN6")
	if m.WAN6Func != nil {
		return m.WAN6Func(ctx, key)
	}
	return ikuai.IPv6Info{}, nil
}

// LAN6 reads the LAN IPv6 address.
func (m *MockRouterClient) LAN6(ctx context.Context, key string) (ikuai.IPv6Info, error) {
	m.record("LAN6")
	if m.LAN6Func != nil {
		return m.LAN6Func(ctx, key)
	}
	return ikuai.IPv6Info{}, nil
}

// MACControl reads the MAC access-control list.
func (m *MockRouterClient) MACControl(ctx context.Context, key string) ([]ikuai.ACLEntry, error) {
	m.record("MACControl")
	if m.MACControlFunc != nil {
		return m.MACControlFunc(ctx, key)
	}
	return nil, nil
}

// LANHosts reads the online LAN hosts. Defaults to an empty index.
func (m *MockRouterClient) LANHosts(ctx context.Context, key string) (*ikuai.HostIndex, error) {
	m.record("LANHosts")
	if m.LANHostsFunc != nil {
		return m.LANHostsFunc(ctx, key)
	}
	return ikuai.NewHostIndex(nil), nil
}

// Switch reads one switch. Defaults to off.
func (m *MockRouterClient) Switch(ctx context.Context, key string, spec ikuai.SwitchSpec) (ikuai.SwitchState, bool, error) {
	m.record("Switch")
	if m.SwitchFunc != nil {
		return m.SwitchFunc(ctx, key, spec)
	}
	return ikuai.SwitchState{Name: spec.Name}, true, nil
}

// Execute sends a control command. Defaults to a legacy success response.
func (m *MockRouterClient) Execute(ctx context.Context, key string, req ikuai.Request) (*ikuai.Response, error) {
	m.record("Execute")
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, key, req)
	}
	return ikuai.Normalize(200, []byte(`{"Result":30000,"ErrMsg":"Success"}`)), nil
}
