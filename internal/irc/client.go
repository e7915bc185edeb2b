// internal/irc/client.go
package irc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	irc "gopkg.in/irc.v4"
)

// Event is one parsed chat event: who said what, and where.
type Event struct {
	Sender string
	Target string
	Text   string
}

// Handler receives parsed Bancho events. All callbacks are invoked from the
// client's single read loop, so implementations see events one at a time.
type Handler interface {
	HandlePrivateMessage(ev Event)
	HandleChannelMessage(ev Event)
	// HandleRemoved fires when the bot itself is kicked from a channel,
	// which Bancho does when a multiplayer room is disposed.
	HandleRemoved(channel string)
}

const (
	reconnectMin = 5 * time.Second
	reconnectMax = 30 * time.Second
)

// Client is the Bancho IRC transport. It dials, reconnects with backoff,
// parses inbound lines into Events, and serializes outbound messages through
// the library's send limiter so the bot never exceeds Bancho's message rate.
type Client struct {
	addr     string
	nick     string
	password string
	interval time.Duration

	handler Handler
	logger  *logrus.Logger

	client *irc.Client
}

// NewClient builds a transport. interval is the minimum gap between sends.
func NewClient(addr, nick, password string, interval time.Duration, handler Handler, logger *logrus.Logger) *Client {
	return &Client{
		addr:     addr,
		nick:     nick,
		password: password,
		interval: interval,
		handler:  handler,
		logger:   logger,
	}
}

// Run connects and processes events until ctx is canceled, redialing with
// exponential backoff on connection failure.
func (c *Client) Run(ctx context.Context) error {
	backoff := reconnectMin
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.WithError(err).Warnf("IRC connection lost, reconnecting in %s", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	c.client = irc.NewClient(conn, irc.ClientConfig{
		Nick:      c.nick,
		Pass:      c.password,
		User:      c.nick,
		Name:      c.nick,
		SendLimit: c.interval,
		SendBurst: 1,
		Handler:   irc.HandlerFunc(c.handle),
	})
	return c.client.RunContext(ctx)
}

func (c *Client) handle(client *irc.Client, m *irc.Message) {
	switch m.Command {
	case "001":
		c.logger.Infof("Connected to %s as %s", c.addr, client.CurrentNick())

	case "PRIVMSG":
		if len(m.Params) < 1 || m.Prefix == nil {
			return
		}
		ev := Event{Sender: m.Prefix.Name, Target: m.Params[0], Text: m.Trailing()}
		if strings.HasPrefix(ev.Target, "#") {
			c.handler.HandleChannelMessage(ev)
		} else {
			c.handler.HandlePrivateMessage(ev)
		}

	case "KICK":
		if len(m.Params) >= 2 && m.Params[1] == client.CurrentNick() {
			c.handler.HandleRemoved(m.Params[0])
		}
	}
}

// Send queues one outbound message. Delivery order matches call order; the
// underlying client throttles to the configured send limit.
func (c *Client) Send(target, text string) {
	c.logger.WithFields(logrus.Fields{
		"target": target,
	}).Infof("Sending: %s", text)
	c.client.Writef("PRIVMSG %s :%s", target, text)
}
