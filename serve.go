package mailfred

import (
	"context"
	"log/slog"
	"sync"
)

// Serve is the top-level entry point: it splits connector into its
// inbound/outbound halves, connects both under perpetual supervisors, and
// then loops forever handing every received Request to service, sending
// whatever ResponseResult comes back (if any) addressed to the request's
// sender. Each request is handled in its own goroutine, same as the
// original crate spawning a task per message, so a slow handler never
// blocks the next Recv.
//
// Serve returns only when ctx is cancelled, or the initial connect of
// either transport fails.
func Serve[S any](ctx context.Context, connector Connector, state S, service Service[S]) error {
	inTransport, outTransport := connector.Split()

	in, err := ConnectInbound(ctx, inTransport, "")
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := ConnectOutbound(ctx, outTransport, "")
	if err != nil {
		return err
	}
	defer out.Close()

	// The original crate shares one outbound connection across all
	// spawned tasks behind a mutex; OutboundSupervisor.Send isn't
	// concurrency-safe on its own (the underlying Sender isn't required
	// to be), so we serialize with the same kind of lock here.
	var sendMu sync.Mutex

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req := in.Recv(ctx)

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			handleOne(ctx, state, service, out, &sendMu, req)
		}(req)
	}
}

func handleOne[S any](ctx context.Context, state S, service Service[S], out *OutboundSupervisor, sendMu *sync.Mutex, req Request) {
	result := service.Call(ctx, state, req)

	if result.Cancelled {
		slog.Debug("request cancelled, no reply sent", "from", req.Address)
		return
	}

	if result.IsErr() {
		logHandlerError(req, result.Err)
	}

	reply := responseToMessage(req, result)

	sendMu.Lock()
	defer sendMu.Unlock()
	out.Send(ctx, &reply)
}

func logHandlerError(req Request, err *ErrorResponse) {
	switch err.Kind {
	case UserError:
		slog.Warn("request rejected", "from", req.Address, "error", err.Cause)
	default:
		slog.Error("handler failed", "from", req.Address, "error", err.Cause)
	}
}

// responseToMessage turns a ResponseResult into the reply Message, sent to
// whoever sent the originating request. An error result still gets a
// reply — with the cause as its body — unless it was Cancelled, which is
// handled separately by the caller.
func responseToMessage(req Request, result ResponseResult) Message {
	if result.IsErr() {
		header := result.Value.Header
		if header == "" {
			header = "Re: " + req.Header
		}
		return Message{
			Address: req.Address,
			Header:  header,
			Body:    ResponseBody{{Kind: Text, Content: []byte(result.Err.Error())}},
		}
	}

	header := result.Value.Header
	if header == "" {
		header = "Re: " + req.Header
	}
	return Message{
		Address: req.Address,
		Header:  header,
		Body:    result.Value.Body,
	}
}

// SpawnConsumer connects an auxiliary InboundTransport and drains it
// forever, discarding every message it receives. It's for side mailboxes
// that need to be kept empty rather than answered — e.g. periodically
// clearing a Sent folder a different process keeps appending to. Grounds
// the original crate's spawn_consumer helper (see its clean_sent_folder
// example).
func SpawnConsumer(ctx context.Context, transport InboundTransport, label string) (*InboundSupervisor, error) {
	sup, err := ConnectInbound(ctx, transport, label)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			sup.Recv(ctx)
		}
	}()

	return sup, nil
}
