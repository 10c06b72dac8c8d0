package mailfred

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// maxReconnDelay caps the exponential backoff between reconnect
	// attempts.
	maxReconnDelay = 60 * time.Second
	// logAfter is how long a connection has to stay down before the
	// supervisor bothers warning about it (once) and, on recovery,
	// reports the total outage duration.
	logAfter = 60 * time.Second
)

func supervisorName(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + "-" + suffix
}

// formatHMS renders a duration as H:MM:SS, matching the original crate's
// outage-duration log line (hours unpadded, minutes/seconds zero-padded).
func formatHMS(d time.Duration) string {
	total := int64(d.Seconds())
	h := total / 3600
	m := (total / 60) % 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// closeIfCloser closes conn if it implements io.Closer, ignoring the
// result. Used to tear down an abandoned connection (the IMAP transport's
// socket, in particular) the moment it is replaced or the supervisor is
// closed — Go has no Drop, so this is the explicit stand-in.
func closeIfCloser(conn any) {
	if c, ok := conn.(io.Closer); ok {
		_ = c.Close()
	}
}

// InboundSupervisor wraps an InboundTransport so that Recv never surfaces
// a transient error: only the initial Connect can fail construction.
type InboundSupervisor struct {
	transport InboundTransport
	conn      Receiver
	logName   string
}

// ConnectInbound performs the one fallible connect. logSuffix distinguishes
// multiple supervisors over the same transport kind in logs (e.g. an
// auxiliary folder consumer); pass "" for the primary one.
func ConnectInbound(ctx context.Context, transport InboundTransport, logSuffix string) (*InboundSupervisor, error) {
	name := supervisorName(transport.Name(), logSuffix)

	conn, err := transport.Connect(ctx)
	if err != nil {
		slog.Error("can not connect", "target", name, "error", err)
		return nil, err
	}

	slog.Info("connected", "target", name)
	return &InboundSupervisor{transport: transport, conn: conn, logName: name}, nil
}

// Recv blocks until a message is available, reconnecting underneath on any
// transient failure. It never returns an error.
func (s *InboundSupervisor) Recv(ctx context.Context) Message {
	for {
		msg, err := s.conn.Recv(ctx)
		if err == nil {
			slog.Debug("message received", "target", s.logName, "from", msg.Address)
			return msg
		}

		slog.Log(ctx, levelTrace, "receiver connection lost", "target", s.logName, "error", err)
		s.forceConnect(ctx)
	}
}

// Close tears down the current connection, which for the IMAP transport
// unblocks its dedicated listener goroutine.
func (s *InboundSupervisor) Close() {
	closeIfCloser(s.conn)
}

func (s *InboundSupervisor) forceConnect(ctx context.Context) {
	forceConnect(ctx, s.logName, func() (any, error) {
		return s.transport.Connect(ctx)
	}, func(conn any) {
		closeIfCloser(s.conn)
		s.conn = conn.(Receiver)
	})
}

// OutboundSupervisor is the Sender-side twin of InboundSupervisor.
type OutboundSupervisor struct {
	transport OutboundTransport
	conn      Sender
	logName   string
}

// ConnectOutbound performs the one fallible connect.
func ConnectOutbound(ctx context.Context, transport OutboundTransport, logSuffix string) (*OutboundSupervisor, error) {
	name := supervisorName(transport.Name(), logSuffix)

	conn, err := transport.Connect(ctx)
	if err != nil {
		slog.Error("can not connect", "target", name, "error", err)
		return nil, err
	}

	slog.Info("connected", "target", name)
	return &OutboundSupervisor{transport: transport, conn: conn, logName: name}, nil
}

// Send blocks until msg is delivered, reconnecting underneath on any
// transient failure. It never returns an error.
func (s *OutboundSupervisor) Send(ctx context.Context, msg *Message) {
	for {
		err := s.conn.Send(ctx, msg)
		if err == nil {
			slog.Debug("message sent", "target", s.logName, "to", msg.Address)
			return
		}

		slog.Log(ctx, levelTrace, "sender connection lost", "target", s.logName, "to", msg.Address, "error", err)
		s.forceConnect(ctx)
	}
}

// Close tears down the current connection.
func (s *OutboundSupervisor) Close() {
	closeIfCloser(s.conn)
}

func (s *OutboundSupervisor) forceConnect(ctx context.Context) {
	forceConnect(ctx, s.logName, func() (any, error) {
		return s.transport.Connect(ctx)
	}, func(conn any) {
		closeIfCloser(s.conn)
		s.conn = conn.(Sender)
	})
}

// forceConnect implements the shared exponential-backoff reconnect loop:
// 2^n seconds, capped at maxReconnDelay, with a single warning once the
// outage has lasted longer than logAfter and a recovery log line
// reporting the total outage duration if it did.
func forceConnect(ctx context.Context, logName string, connect func() (any, error), apply func(any)) {
	var attempts uint
	warned := false
	start := time.Now()

	for {
		conn, err := connect()
		if err == nil {
			apply(conn)

			if down := time.Since(start); down > logAfter {
				slog.Info("reconnected", "target", logName, "after", formatHMS(down))
			}
			return
		}

		if down := time.Since(start); down > logAfter && !warned {
			warned = true
			slog.Warn("disconnected for more than 60 seconds", "target", logName)
		}

		delay := time.Duration(1) << attempts * time.Second
		if delay > maxReconnDelay {
			delay = maxReconnDelay
		}
		if attempts < 6 {
			// 2^6s already exceeds maxReconnDelay; stop growing so the
			// shift never runs far enough to wrap around.
			attempts++
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}
