package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestClient(caller string) *Client {
	return &Client{
		conn:   nil, // Not needed for hub tests
		caller: caller,
		send:   make(chan any, 16),
		logger: testLogger(),
	}
}

// TestNewHub verifies that NewHub creates a hub with no clients.
func TestNewHub(t *testing.T) {
	hub := NewHub(testLogger())

	if hub.clients == nil {
		t.Error("hub.clients map is nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

func TestRegisterMultipleClients(t *testing.T) {
	hub := NewHub(testLogger())

	callers := []string{"chrome-extension://a", "chrome-extension://b", "10.0.0.1"}
	for i, caller := range callers {
		hub.Register(newTestClient(caller))
		if hub.ClientCount() != i+1 {
			t.Errorf("ClientCount() = %d, want %d", hub.ClientCount(), i+1)
		}
	}
}

// TestUnregister verifies that Unregister removes a client and closes its send channel.
func TestUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("caller-1")

	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	// Verify channel is closed by attempting to receive.
	if _, ok := <-client.send; ok {
		t.Error("client.send channel is not closed")
	}

	// A second unregister must not close the channel again.
	hub.Unregister(client)
}

// TestUnregisterNotRegistered verifies that Unregister on a client not in the hub does nothing.
func TestUnregisterNotRegistered(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("caller-1")

	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		if !ok {
			t.Error("channel closed for unregistered client")
		}
	default:
	}
}

func TestCloseAll_SkipsNilConns(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Register(newTestClient("a"))
	hub.CloseAll("bye")
	if hub.ClientCount() != 1 {
		t.Errorf("CloseAll unregistered clients directly; count = %d", hub.ClientCount())
	}
}

func TestEnqueue_RespectsContext(t *testing.T) {
	client := &Client{send: make(chan any), logger: testLogger()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		client.enqueue(ctx, "msg")
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked after context cancel")
	}
}

// TestConcurrentRegisterUnregister verifies that concurrent operations are safe.
func TestConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			client := newTestClient(string(rune('a' + id)))
			hub.Register(client)
			_ = hub.ClientCount()
			hub.Unregister(client)
		}(i)
	}
	wg.Wait()

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

// TestConcurrentClientCount verifies that ClientCount is safe to call concurrently.
func TestConcurrentClientCount(t *testing.T) {
	hub := NewHub(testLogger())

	var wg sync.WaitGroup
	var countSum int64

	for i := 0; i < 10; i++ {
		hub.Register(newTestClient(string(rune('a' + i))))
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			atomic.AddInt64(&countSum, int64(hub.ClientCount()))
		}()
	}
	wg.Wait()

	if countSum != 10*100 {
		t.Errorf("sum of all ClientCount() calls = %d, want %d", countSum, 10*100)
	}
}
