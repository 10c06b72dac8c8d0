package mailfred

import "context"

// Receiver is a single-consumer inbound connection.
type Receiver interface {
	Recv(ctx context.Context) (Message, error)
}

// Sender is an outbound connection. Serve serializes concurrent sends with
// a mutex, so implementations need not be safe for concurrent use on their
// own.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// InboundTransport is a connect-only descriptor that yields a Receiver.
// Name is a short, stable label used in log lines.
type InboundTransport interface {
	Name() string
	Connect(ctx context.Context) (Receiver, error)
}

// OutboundTransport is a connect-only descriptor that yields a Sender.
type OutboundTransport interface {
	Name() string
	Connect(ctx context.Context) (Sender, error)
}

// Connector yields an inbound/outbound transport pair. A (InboundTransport,
// OutboundTransport) pair satisfies it directly via Pair.
type Connector interface {
	Split() (InboundTransport, OutboundTransport)
}

// Pair is the identity Connector: it just hands back its two halves.
type Pair struct {
	In  InboundTransport
	Out OutboundTransport
}

// Split implements Connector.
func (p Pair) Split() (InboundTransport, OutboundTransport) {
	return p.In, p.Out
}
