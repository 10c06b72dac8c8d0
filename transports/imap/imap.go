// Package imap is the IMAP inbound transport: it treats a mailbox as an
// async request queue. A dedicated goroutine runs the blocking go-imap
// client in a loop (fetch, deliver, mark \Deleted, expunge or IDLE), bridged
// to the async Recv call through a pair of channels so that a message is
// only ever removed from the server after it has been handed to, and
// accepted by, the caller — at-least-once delivery, never at-most-once.
package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"slices"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	idle "github.com/emersion/go-imap-idle"

	"github.com/mailfred-go/mailfred"
)

const dialTimeout = 10 * time.Second

// Imap is an InboundTransport descriptor: reading from Folder (default
// INBOX) on a mail account reachable over IMAPS.
type Imap struct {
	Domain   string
	Port     int
	User     string
	Password string
	// Folder defaults to "INBOX" when empty.
	Folder string
}

// Name implements mailfred.InboundTransport.
func (Imap) Name() string { return "imap" }

func (im Imap) folder() string {
	if im.Folder == "" {
		return "INBOX"
	}
	return im.Folder
}

// Connect implements mailfred.InboundTransport. It dials, logs in, selects
// the folder, and starts the background listener goroutine.
func (im Imap) Connect(ctx context.Context) (mailfred.Receiver, error) {
	c, conn, err := dialAndLogin(ctx, im.Domain, im.Port, im.User, im.Password, im.folder())
	if err != nil {
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())

	ic := &imapConnection{
		client: c,
		conn:   conn,
		msgCh:  make(chan recvResult),
		readyCh: make(chan struct{}, 1),
		cancel: cancel,
	}

	go listen(listenCtx, c, ic.readyCh, ic.msgCh)

	return ic, nil
}

// ClearFolder deletes every message in folder: a one-shot connect, mark-all-
// deleted, expunge, logout. Intended for maintenance tasks (e.g. keeping a
// Sent folder from growing unbounded) rather than the serving path.
func (im Imap) ClearFolder(ctx context.Context, folder string) error {
	c, conn, err := dialAndLogin(ctx, im.Domain, im.Port, im.User, im.Password, folder)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Logout()
		_ = conn.Close()
	}()

	seqset := new(goimap.SeqSet)
	seqset.AddRange(1, 0)

	item := goimap.FormatFlagsOp(goimap.AddFlags, true)
	if err := c.Store(seqset, item, []interface{}{goimap.DeletedFlag}, nil); err != nil {
		return fmt.Errorf("imap: mark all deleted in %s: %w", folder, err)
	}

	if err := c.Expunge(nil); err != nil {
		return fmt.Errorf("imap: expunge %s: %w", folder, err)
	}
	return nil
}

func dialAndLogin(ctx context.Context, domain string, port int, user, password, folder string) (*client.Client, net.Conn, error) {
	address := fmt.Sprintf("%s:%d", domain, port)

	type dialResult struct {
		conn net.Conn
		err  error
	}
	done := make(chan dialResult, 1)

	go func() {
		dialer := &net.Dialer{Timeout: dialTimeout}
		raw, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			done <- dialResult{err: err}
			return
		}

		tlsConn := tls.Client(raw, &tls.Config{ServerName: domain})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = raw.Close()
			done <- dialResult{err: err}
			return
		}
		done <- dialResult{conn: tlsConn}
	}()

	var conn net.Conn
	select {
	case r := <-done:
		if r.err != nil {
			return nil, nil, fmt.Errorf("imap: dial %s: %w", address, r.err)
		}
		conn = r.conn
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	c, err := client.New(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("imap: handshake: %w", err)
	}

	if err := c.Login(user, password); err != nil {
		_ = c.Logout()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("imap: login: %w", err)
	}

	if _, err := c.Select(folder, false); err != nil {
		_ = c.Logout()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("imap: select %s: %w", folder, err)
	}

	return c, conn, nil
}

type recvResult struct {
	msg mailfred.Message
	err error
}

// imapConnection implements mailfred.Receiver and io.Closer. Closer is
// what lets InboundSupervisor unblock the listener goroutine's blocking
// IMAP calls on reconnect/shutdown, standing in for Go's lack of Drop.
type imapConnection struct {
	client  *client.Client
	conn    net.Conn
	msgCh   chan recvResult
	readyCh chan struct{}
	cancel  context.CancelFunc
}

// Recv implements mailfred.Receiver. It signals the listener that a slot is
// free, then blocks for either the next message or a listener error.
func (c *imapConnection) Recv(ctx context.Context) (mailfred.Message, error) {
	select {
	case c.readyCh <- struct{}{}:
	default:
	}

	select {
	case r, ok := <-c.msgCh:
		if !ok {
			return mailfred.Message{}, fmt.Errorf("imap: connection closed")
		}
		return r.msg, r.err
	case <-ctx.Done():
		return mailfred.Message{}, ctx.Err()
	}
}

// Close implements io.Closer: it stops the listener and tears down the
// socket, which unblocks any in-flight blocking IMAP call the same way a
// dropped TcpStream would in the original crate.
func (c *imapConnection) Close() error {
	c.cancel()
	_ = c.client.Logout()
	return c.conn.Close()
}

// listen is the blocking loop run on its own goroutine: fetch everything
// not already \Deleted, gate each parseable message on the caller being
// ready to receive it, delete it once delivered, and either expunge (if
// anything was processed this round) or idle until the mailbox changes.
func listen(ctx context.Context, c *client.Client, readyCh <-chan struct{}, msgCh chan<- recvResult) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		seqset := new(goimap.SeqSet)
		seqset.AddRange(1, 0)

		section := &goimap.BodySectionName{}
		items := []goimap.FetchItem{goimap.FetchFlags, section.FetchItem()}

		messages := make(chan *goimap.Message, 32)
		fetchDone := make(chan error, 1)
		go func() {
			fetchDone <- c.Fetch(seqset, items, messages)
		}()

		var fetched []*goimap.Message
		for msg := range messages {
			fetched = append(fetched, msg)
		}
		if err := <-fetchDone; err != nil {
			sendErr(ctx, msgCh, fmt.Errorf("imap: fetch: %w", err))
			return
		}

		processed := 0
		for _, msg := range fetched {
			if slices.Contains(msg.Flags, goimap.DeletedFlag) {
				continue
			}

			body := msg.GetBody(section)
			if body == nil {
				continue
			}

			parsed, ok := parseMessage(body)
			if !ok {
				// Sender could not be parsed: the message cannot be
				// replied to, so it is left exactly as it is (neither
				// delivered nor deleted), matching the original crate's
				// read_email returning None.
				continue
			}

			select {
			case <-readyCh:
			case <-ctx.Done():
				return
			}

			select {
			case msgCh <- recvResult{msg: parsed}:
			case <-ctx.Done():
				return
			}

			if err := markDeleted(c, msg.SeqNum); err != nil {
				sendErr(ctx, msgCh, fmt.Errorf("imap: mark deleted: %w", err))
				return
			}
			processed++
		}

		if processed > 0 {
			if err := c.Expunge(nil); err != nil {
				sendErr(ctx, msgCh, fmt.Errorf("imap: expunge: %w", err))
				return
			}
			continue
		}

		if err := idleUntilExists(ctx, c); err != nil {
			sendErr(ctx, msgCh, fmt.Errorf("imap: idle: %w", err))
			return
		}
	}
}

func sendErr(ctx context.Context, msgCh chan<- recvResult, err error) {
	select {
	case msgCh <- recvResult{err: err}:
	case <-ctx.Done():
	}
}

func markDeleted(c *client.Client, seqNum uint32) error {
	seqset := new(goimap.SeqSet)
	seqset.AddNum(seqNum)

	item := goimap.FormatFlagsOp(goimap.AddFlags, true)
	return c.Store(seqset, item, []interface{}{goimap.DeletedFlag}, nil)
}

// idleUntilExists blocks until the mailbox reports new messages (an EXISTS
// update) or ctx is cancelled. Issuing IDLE only when nothing was just
// processed avoids the race where a message delivered between our last
// FETCH and the IDLE command would go unnoticed until some later poll —
// see the go-imap issue referenced in the original crate.
func idleUntilExists(ctx context.Context, c *client.Client) error {
	updates := make(chan client.Update)
	c.Updates = updates
	defer func() { c.Updates = nil }()

	idleClient := idle.NewClient(c)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- idleClient.Idle(stop) }()

	for {
		select {
		case <-ctx.Done():
			close(stop)
			<-done
			return ctx.Err()
		case err := <-done:
			return err
		case upd := <-updates:
			if _, ok := upd.(*client.MailboxUpdate); ok {
				close(stop)
				<-done
				return nil
			}
		}
	}
}
