package mailfred

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeReceiver struct {
	fail atomic.Bool
}

func (f *fakeReceiver) Recv(ctx context.Context) (Message, error) {
	if f.fail.Load() {
		return Message{}, errors.New("transient failure")
	}
	return Message{Address: "a@example.com", Header: "hi"}, nil
}

type fakeInboundTransport struct {
	connectCount atomic.Int32
	nextFails    atomic.Bool
}

func (t *fakeInboundTransport) Name() string { return "fake" }

func (t *fakeInboundTransport) Connect(ctx context.Context) (Receiver, error) {
	t.connectCount.Add(1)
	if t.nextFails.Load() {
		return nil, errors.New("connect failed")
	}
	return &fakeReceiver{}, nil
}

func TestInboundSupervisor_ReconnectsOnTransientFailure(t *testing.T) {
	t.Parallel()

	transport := &fakeInboundTransport{}
	sup, err := ConnectInbound(context.Background(), transport, "")
	if err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}

	recv := sup.conn.(*fakeReceiver)
	recv.fail.Store(true)

	done := make(chan Message, 1)
	go func() {
		done <- sup.Recv(context.Background())
	}()

	// Give the supervisor a moment to observe the failure and reconnect;
	// the new connection (fresh fakeReceiver) does not fail, so Recv
	// should return shortly instead of blocking forever.
	select {
	case msg := <-done:
		if msg.Address != "a@example.com" {
			t.Errorf("unexpected message: %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Recv did not return after reconnect")
	}

	if transport.connectCount.Load() < 2 {
		t.Errorf("expected at least one reconnect, got %d connects", transport.connectCount.Load())
	}
}

func TestConnectInbound_PropagatesInitialConnectError(t *testing.T) {
	t.Parallel()

	transport := &fakeInboundTransport{}
	transport.nextFails.Store(true)

	_, err := ConnectInbound(context.Background(), transport, "")
	if err == nil {
		t.Fatal("expected an error from the initial connect")
	}
}

func TestFormatHMS(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00:00"},
		{90 * time.Second, "0:01:30"},
		{3661 * time.Second, "1:01:01"},
	}
	for _, c := range cases {
		if got := formatHMS(c.d); got != c.want {
			t.Errorf("formatHMS(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestForceConnect_WaitsBetweenAttemptsAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	// A failing connect is retried after a backoff delay (1s for the first
	// retry), not in a busy loop, and forceConnect returns once ctx is
	// cancelled: with the cancel at 50ms exactly one attempt is made.
	var calls int
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	forceConnect(ctx, "test", func() (any, error) {
		calls++
		return nil, errors.New("always fails")
	}, func(any) {})

	if calls != 1 {
		t.Fatalf("expected exactly one connect attempt before the first backoff elapsed, got %d", calls)
	}
}
