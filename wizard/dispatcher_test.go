package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CVForgeBot/model"
)

// recordingProcessor echoes each event's text back as one response.
type recordingProcessor struct {
	delay   time.Duration
	panicOn string

	mu       sync.Mutex
	active   map[int64]int
	overlaps int
}

func (p *recordingProcessor) Process(_ context.Context, ev model.Event, sink Sink) {
	p.mu.Lock()
	if p.active == nil {
		p.active = map[int64]int{}
	}
	p.active[ev.UserID]++
	if p.active[ev.UserID] > 1 {
		p.overlaps++
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active[ev.UserID]--
		p.mu.Unlock()
	}()

	if ev.Text == p.panicOn && p.panicOn != "" {
		panic("boom")
	}
	time.Sleep(p.delay)
	sink(model.Response{Kind: model.ResponseInfo, Text: ev.Text})
}

type collected struct {
	mu    sync.Mutex
	texts map[int64][]string
}

func (c *collected) sink(_ context.Context, ev model.Event, resp model.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.texts == nil {
		c.texts = map[int64][]string{}
	}
	c.texts[ev.UserID] = append(c.texts[ev.UserID], resp.Text)
}

func TestDispatcherKeepsPerUserOrder(t *testing.T) {
	p := &recordingProcessor{delay: time.Millisecond}
	out := &collected{}
	d := NewDispatcher(context.Background(), p, out.sink, nil, zerolog.Nop())

	want := map[int64][]string{}
	for i := 0; i < 20; i++ {
		for u := int64(1); u <= 5; u++ {
			text := string(rune('a' + i))
			want[u] = append(want[u], text)
			require.NoError(t, d.Submit(model.Event{UserID: u, Kind: model.EventAnswer, Text: text}))
		}
	}
	d.Close()

	assert.Equal(t, want, out.texts)
	assert.Zero(t, p.overlaps, "events of one user never run concurrently")
}

func TestDispatcherRunsUsersInParallel(t *testing.T) {
	p := &recordingProcessor{delay: 100 * time.Millisecond}
	out := &collected{}
	d := NewDispatcher(context.Background(), p, out.sink, nil, zerolog.Nop())

	started := time.Now()
	for u := int64(1); u <= 10; u++ {
		require.NoError(t, d.Submit(model.Event{UserID: u, Text: "x"}))
	}
	d.Close()

	assert.Less(t, time.Since(started), 900*time.Millisecond)
	assert.Len(t, out.texts, 10)
}

func TestDispatcherSurvivesPanic(t *testing.T) {
	p := &recordingProcessor{panicOn: "bad"}
	out := &collected{}
	d := NewDispatcher(context.Background(), p, out.sink, nil, zerolog.Nop())

	require.NoError(t, d.Submit(model.Event{UserID: 1, Text: "bad"}))
	require.NoError(t, d.Submit(model.Event{UserID: 1, Text: "good"}))
	d.Close()

	assert.Equal(t, []string{"good"}, out.texts[1])
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(context.Background(), &recordingProcessor{}, (&collected{}).sink, nil, zerolog.Nop())
	d.Close()

	assert.ErrorIs(t, d.Submit(model.Event{UserID: 1}), ErrDispatcherClosed)
}

func TestDispatcherWithMachine(t *testing.T) {
	f := newFixture(t)
	out := &collected{}
	d := NewDispatcher(context.Background(), f.machine, out.sink, nil, zerolog.Nop())

	require.NoError(t, d.Submit(model.Event{UserID: user, Kind: model.EventStart}))
	require.NoError(t, d.Submit(model.Event{UserID: user, Kind: model.EventAnswer, Text: "Jane"}))
	require.NoError(t, d.Submit(model.Event{UserID: user, Kind: model.EventAnswer, Text: "jane@x.com"}))
	d.Close()

	require.Len(t, out.texts[user], 3)
	assert.Equal(t, "Enter your full name:", out.texts[user][0])
	assert.Equal(t, "Enter your email address:", out.texts[user][1])
	assert.Contains(t, out.texts[user][2], "jane@x.com")
}
