package client

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
	"github.com/AAwhittier/Parallax-Scrolling/internal/protocol"
)

// Client is a headless network client: it owns the connection, frames and
// parses envelopes on a reader goroutine, and hands decoded snapshots to
// the caller's loop over a channel. Malformed messages are dropped with a
// diagnostic, never fatal.
type Client struct {
	conn net.Conn
	id   string // senderId for outgoing envelopes

	PlayerID string
	Index    int
	TickRate int

	snapshots chan protocol.Snapshot
	closed    atomic.Bool
	closeCh   chan struct{}
	log       *zap.Logger
}

// Dial connects and performs the join handshake, blocking until the
// server acknowledges or the timeout passes.
func Dial(addr, name string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Client{
		conn:      conn,
		id:        fmt.Sprintf("client-%s", name),
		snapshots: make(chan protocol.Snapshot, 8),
		closeCh:   make(chan struct{}),
		log:       log,
	}

	join, err := protocol.Encode(c.id, protocol.MsgJoinGame, protocol.JoinGame{Name: name})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := gonet.WriteFrame(conn, join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	ack, err := c.awaitJoined()
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetReadDeadline(time.Time{})

	c.PlayerID = ack.PlayerID
	c.Index = ack.Index
	c.TickRate = ack.TickRate

	go c.readLoop()
	return c, nil
}

func (c *Client) awaitJoined() (*protocol.GameJoined, error) {
	for {
		frame, err := gonet.ReadFrame(c.conn)
		if err != nil {
			return nil, fmt.Errorf("await GAME_JOINED: %w", err)
		}
		env, err := protocol.DecodeEnvelope(frame)
		if err != nil {
			continue
		}
		if env.SenderID == c.id {
			continue // loop-back suppression
		}
		if protocol.ParseMessageType(env.MessageType) != protocol.MsgGameJoined {
			continue
		}
		ack, err := protocol.DecodePayload[protocol.GameJoined](env)
		if err != nil {
			return nil, fmt.Errorf("malformed GAME_JOINED: %w", err)
		}
		return &ack, nil
	}
}

// SendInput transmits one input command.
func (c *Client) SendInput(msg protocol.InputMessage) error {
	data, err := protocol.Encode(c.id, protocol.MsgInput, msg)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return gonet.WriteFrame(c.conn, data)
}

// Snapshots returns the stream of authoritative snapshots. The channel is
// closed when the connection dies.
func (c *Client) Snapshots() <-chan protocol.Snapshot {
	return c.snapshots
}

func (c *Client) readLoop() {
	defer close(c.snapshots)
	for {
		frame, err := gonet.ReadFrame(c.conn)
		if err != nil {
			if !c.closed.Load() {
				c.log.Debug("read error", zap.Error(err))
			}
			return
		}
		env, err := protocol.DecodeEnvelope(frame)
		if err != nil {
			c.log.Debug("bad envelope dropped", zap.Error(err))
			continue
		}
		if env.SenderID == c.id {
			continue // loop-back suppression
		}
		if protocol.ParseMessageType(env.MessageType) != protocol.MsgSnapshot {
			continue
		}
		snap, err := protocol.DecodePayload[protocol.Snapshot](env)
		if err != nil {
			c.log.Debug("bad snapshot payload dropped", zap.Error(err))
			continue
		}
		select {
		case c.snapshots <- snap:
		case <-c.closeCh:
			return
		default:
			// Consumer is behind: drop the oldest buffered snapshot,
			// newest state wins.
			select {
			case <-c.snapshots:
			default:
			}
			select {
			case c.snapshots <- snap:
			default:
			}
		}
	}
}

// Close tears down the connection.
func (c *Client) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.closeCh)
		c.conn.Close()
	}
}
