package eventbus

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/game"
)

func envelope(seq uint64, ev game.Event) Envelope {
	return Envelope{
		TableID:  "t1",
		Sequence: seq,
		At:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:     ev.EventType(),
		Event:    ev,
	}
}

func TestBusFanOut(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var a, b []uint64
	unsubA := bus.Subscribe(SubscriberFunc(func(env Envelope) { a = append(a, env.Sequence) }))
	bus.Subscribe(SubscriberFunc(func(env Envelope) { b = append(b, env.Sequence) }))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, envelope(1, game.HandStartedEvent{TableID: "t1"})))
	unsubA()
	unsubA()
	require.NoError(t, bus.Publish(ctx, envelope(2, game.HandStartedEvent{TableID: "t1"})))

	assert.Equal(t, []uint64{1}, a)
	assert.Equal(t, []uint64{1, 2}, b)
}

type fakeConn struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSPublisher(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	p := NewNATSPublisher(conn, "")

	env := envelope(4, game.ActionAppliedEvent{TableID: "t1", Seat: 2, Action: game.ActionRaise, Amount: 60})
	require.NoError(t, p.Publish(context.Background(), env))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "table.t1.action_applied", conn.subjects[0])

	var decoded struct {
		TableID  string `json:"table_id"`
		Sequence uint64 `json:"sequence"`
		Type     string `json:"type"`
		Event    struct {
			Seat   int    `json:"seat"`
			Action string `json:"action"`
			Amount int64  `json:"amount"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, uint64(4), decoded.Sequence)
	assert.Equal(t, "action_applied", decoded.Type)
	assert.Equal(t, "raise", decoded.Event.Action)
	assert.Equal(t, int64(60), decoded.Event.Amount)
}

func TestNATSSubjectSanitisesTableID(t *testing.T) {
	t.Parallel()

	p := NewNATSPublisher(&fakeConn{}, "poker")
	env := envelope(1, game.HandResultEvent{})
	env.TableID = "eu.west>*"
	assert.Equal(t, "poker.eu_west__.hand_result", p.Subject(env))
}

func TestNATSPublisherErrors(t *testing.T) {
	t.Parallel()

	p := NewNATSPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "")
	err := p.Publish(context.Background(), envelope(1, game.HandStartedEvent{}))
	require.ErrorContains(t, err, "connection closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.Publish(ctx, envelope(1, game.HandStartedEvent{})), context.Canceled)
}

type failing struct{ err error }

func (f failing) Publish(context.Context, Envelope) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	t.Parallel()

	first := errors.New("first")
	bus := NewBus()
	var got int
	bus.Subscribe(SubscriberFunc(func(Envelope) { got++ }))

	m := Multi{failing{first}, bus, Discard{}}
	err := m.Publish(context.Background(), envelope(1, game.HandStartedEvent{}))
	require.ErrorIs(t, err, first)
	assert.Equal(t, 1, got, "later publishers still run")
}

func TestLogPublisher(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	p := NewLogPublisher(logger)

	require.NoError(t, p.Publish(context.Background(), envelope(9, game.ChipIntegrityFailureEvent{
		TableID: "t1", Discrepancy: -5, Reason: "stacks after settlement",
	})))
	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"discrepancy":-5`)
	assert.Contains(t, out, `"component":"events"`)
}
