// Package sse implements a Server-Sent Events broker for live play updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeFocusChanged    = "focus.changed"
	TypeCellChanged     = "cell.changed"
	TypeSessionProgress = "session.progress"
	TypePuzzleCreated   = "puzzle.created"
	TypePuzzleUpdated   = "puzzle.updated"
	TypePuzzleDeleted   = "puzzle.deleted"
)

// Event represents an SSE event to broadcast. A non-empty SessionID limits
// delivery to clients watching every session or that session.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"-"`
	Data      any    `json:"data"`
}

// Progress is the payload of session.progress.
type Progress struct {
	SessionID string `json:"session_id"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	Complete  bool   `json:"complete"`
}

type puzzleEventReq struct {
	kind string
	path string
}

type subscription struct {
	ch      chan []byte
	session string
}

type progressState struct {
	last    time.Time
	pending *Progress
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + per-session progress throttle). Public methods communicate with this
// loop through channels, so no mutexes are required. Session events and
// progress share one queue: a client sees them in the order they were
// published, so progress never overtakes the cell change behind it.
type Broker struct {
	progressMin time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	puzzleEventCh chan puzzleEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given progress throttle interval.
func NewBroker(progressThrottle time.Duration) *Broker {
	if progressThrottle <= 0 {
		progressThrottle = 500 * time.Millisecond
	}

	b := &Broker{
		progressMin:   progressThrottle,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		puzzleEventCh: make(chan puzzleEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]string)
	progress := make(map[string]*progressState)
	ticker := time.NewTicker(b.progressMin)
	defer ticker.Stop()

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch, session := range clients {
			if session != "" && event.SessionID != "" && session != event.SessionID {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	sendProgress := func(p Progress) {
		broadcast(Event{Type: TypeSessionProgress, SessionID: p.SessionID, Data: p})
	}

	offerProgress := func(p Progress) {
		st, ok := progress[p.SessionID]
		if !ok {
			st = &progressState{}
			progress[p.SessionID] = st
		}
		now := time.Now()
		if now.Sub(st.last) >= b.progressMin || p.Complete {
			st.last, st.pending = now, nil
			sendProgress(p)
		} else {
			st.pending = &p
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.session

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			if p, ok := event.Data.(Progress); ok && event.Type == TypeSessionProgress {
				offerProgress(p)
				continue
			}
			broadcast(event)

		case req := <-b.puzzleEventCh:
			data := map[string]string{"path": req.path}
			switch req.kind {
			case "created":
				broadcast(Event{Type: TypePuzzleCreated, Data: data})
			case "updated":
				broadcast(Event{Type: TypePuzzleUpdated, Data: data})
			case "deleted":
				broadcast(Event{Type: TypePuzzleDeleted, Data: data})
			}

		case now := <-ticker.C:
			for id, st := range progress {
				switch {
				case st.pending != nil && now.Sub(st.last) >= b.progressMin:
					sendProgress(*st.pending)
					st.last, st.pending = now, nil
				case st.pending == nil && now.Sub(st.last) >= 10*b.progressMin:
					delete(progress, id)
				}
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client watching every session and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeSession("")
}

// SubscribeSession adds a client that receives catalog events and the events
// of one session. An empty id watches every session.
func (b *Broker) SubscribeSession(sessionID string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, session: sessionID}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all interested clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishPuzzleEvent publishes a catalog change reported by the file watcher.
func (b *Broker) PublishPuzzleEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.puzzleEventCh <- puzzleEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// PublishProgress publishes session progress, at most once per throttle
// interval per session. The latest suppressed value is delivered once the
// interval has passed; completion is never delayed.
func (b *Broker) PublishProgress(p Progress) {
	if b.closed.Load() {
		return
	}
	b.Publish(Event{Type: TypeSessionProgress, SessionID: p.SessionID, Data: p})
}

// ServeHTTP is the SSE endpoint handler (GET /events). The optional session
// query parameter narrows the stream to one session.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeSession(r.URL.Query().Get("session"))
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
