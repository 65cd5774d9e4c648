package eventbus

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NATSConn is the part of *nats.Conn the publisher uses.
type NATSConn interface {
	Publish(subject string, data []byte) error
}

var _ NATSConn = (*nats.Conn)(nil)

// NATSPublisher sends each envelope as JSON to
// "<prefix>.<table id>.<event type>".
type NATSPublisher struct {
	conn   NATSConn
	prefix string
}

// ConnectNATS dials url with a client name.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return nc, nil
}

func NewNATSPublisher(conn NATSConn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "table"
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an envelope is published on.
func (p *NATSPublisher) Subject(env Envelope) string {
	return p.prefix + "." + subjectToken(env.TableID) + "." + string(env.Type)
}

func (p *NATSPublisher) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", env.Type, err)
	}
	if err := p.conn.Publish(p.Subject(env), data); err != nil {
		return fmt.Errorf("publish %s event: %w", env.Type, err)
	}
	return nil
}

// subjectToken keeps a table id from adding subject levels or wildcards.
func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n':
			return '_'
		}
		return r
	}, s)
}
