package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

// TestMockRouterClient_DefaultBehavior verifies that the mock returns sensible defaults
func TestMockRouterClient_DefaultBehavior(t *testing.T) {
	mock := NewMockRouterClient()
	ctx := context.Background()

	key, err := mock.Login(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != "mock-key" {
		t.Errorf("Expected mock-key, got %q", key)
	}

	idx, err := mock.LANHosts(ctx, key)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if idx == nil || idx.Len() != 0 {
		t.Errorf("Expected empty host index, got %v", idx)
	}

	state, ok, err := mock.Switch(ctx, key, ikuai.ARPFilterSwitch)
	if err != nil || !ok {
		t.Fatalf("Expected resolved switch, got ok=%v err=%v", ok, err)
	}
	if state.Name != "arp_filter" || state.On {
		t.Errorf("Expected arp_filter off, got %+v", state)
	}

	resp, err := mock.Execute(ctx, key, ikuai.RebootRequest)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !resp.Succeeded() {
		t.Errorf("Expected default execute to succeed, got %s", resp.Describe())
	}
}

// TestMockRouterClient_CustomFuncs tests that function fields override defaults
func TestMockRouterClient_CustomFuncs(t *testing.T) {
	wantErr := errors.New("boom")
	mock := &MockRouterClient{
		StatusFunc: func(ctx context.Context, key string) (ikuai.SystemMetrics, error) {
			return ikuai.SystemMetrics{}, wantErr
		},
	}

	if _, err := mock.Status(context.Background(), "k"); !errors.Is(err, wantErr) {
		t.Errorf("Expected custom error, got %v", err)
	}
}

// TestMockRouterClient_CountsCalls tests the call counters
func TestMockRouterClient_CountsCalls(t *testing.T) {
	mock := NewMockRouterClient()
	ctx := context.Background()

	_, _ = mock.Status(ctx, "k")
	_, _ = mock.Status(ctx, "k")
	_, _ = mock.WAN(ctx, "k")

	if got := mock.Calls("Status"); got != 2 {
		t.Errorf("Expected 2 Status calls, got %d", got)
	}
	if got := mock.TotalCalls(); got != 3 {
		t.Errorf("Expected 3 calls in total, got %d", got)
	}
}
