// Package live implements the topic-scoped event broker that fans out
// ephemeral updates to connected clients over Server-Sent Events.
//
// Topics are "candidate:<id>" (everyone viewing that candidate's thread) and
// "user:<id>" (one user's personal feed). Delivery is at-most-once and
// best-effort: events for absent or slow subscribers are dropped, and the
// notification store remains the durable record.
package live

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Event is one ephemeral message to route to a topic.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Session is a connected client as seen by the consumer of the broker.
// C yields pre-formatted SSE frames and is closed when the session ends.
type Session struct {
	ID string
	C  <-chan []byte
}

type client struct {
	id     string
	user   int64 // owner; topic control is rejected for anyone else
	ch     chan []byte
	topics map[string]struct{}
}

type subscribeReq struct {
	c        *client
	personal string // personal topic joined for the connection's lifetime
}

type topicReq struct {
	sessionID string
	user      int64 // caller; must own the session
	topic     string
	resp      chan bool
}

type publishReq struct {
	topic   string
	exclude string // originating session, skipped on delivery
	frame   []byte
}

// Broker routes events to subscribed sessions.
//
// Concurrency model: a single internal event loop (goroutine) owns all
// mutable state (sessions + topic index). Public methods communicate with
// this loop through channels, so no mutexes are required and join/leave are
// applied atomically per session.
type Broker struct {
	clientBuf int

	subscribeCh   chan subscribeReq
	unsubscribeCh chan string
	joinCh        chan topicReq
	leaveCh       chan topicReq
	publishCh     chan publishReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. clientBuf is the per-session frame buffer;
// a slow client whose buffer is full misses frames instead of blocking the
// loop.
func NewBroker(clientBuf int) *Broker {
	if clientBuf <= 0 {
		clientBuf = 64
	}

	b := &Broker{
		clientBuf:     clientBuf,
		subscribeCh:   make(chan subscribeReq),
		unsubscribeCh: make(chan string),
		joinCh:        make(chan topicReq),
		leaveCh:       make(chan topicReq),
		publishCh:     make(chan publishReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// CandidateTopic names the live channel for a candidate's note thread.
func CandidateTopic(candidateID int64) string {
	return fmt.Sprintf("candidate:%d", candidateID)
}

// UserTopic names a user's personal live channel.
func UserTopic(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// IsCandidateTopic reports whether topic names a candidate thread channel.
// Personal user topics are joined implicitly at connect, never by request.
func IsCandidateTopic(topic string) bool {
	rest, ok := strings.CutPrefix(topic, "candidate:")
	if !ok {
		return false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	return err == nil && id > 0
}

func (b *Broker) run() {
	defer close(b.stopped)

	sessions := make(map[string]*client)
	topics := make(map[string]map[string]*client)

	join := func(c *client, topic string) {
		if _, ok := c.topics[topic]; ok {
			return
		}
		c.topics[topic] = struct{}{}
		members, ok := topics[topic]
		if !ok {
			members = make(map[string]*client)
			topics[topic] = members
		}
		members[c.id] = c
	}

	leave := func(c *client, topic string) {
		delete(c.topics, topic)
		if members, ok := topics[topic]; ok {
			delete(members, c.id)
			if len(members) == 0 {
				delete(topics, topic)
			}
		}
	}

	drop := func(c *client) {
		for topic := range c.topics {
			leave(c, topic)
		}
		delete(sessions, c.id)
		close(c.ch)
	}

	for {
		select {
		case <-b.stopCh:
			for _, c := range sessions {
				close(c.ch)
			}
			return

		case req := <-b.subscribeCh:
			sessions[req.c.id] = req.c
			join(req.c, req.personal)

		case id := <-b.unsubscribeCh:
			if c, ok := sessions[id]; ok {
				drop(c)
			}

		case req := <-b.joinCh:
			c, ok := sessions[req.sessionID]
			ok = ok && c.user == req.user
			if ok {
				join(c, req.topic)
			}
			req.resp <- ok

		case req := <-b.leaveCh:
			c, ok := sessions[req.sessionID]
			ok = ok && c.user == req.user
			if ok {
				leave(c, req.topic)
			}
			req.resp <- ok

		case req := <-b.publishCh:
			for id, c := range topics[req.topic] {
				if id == req.exclude {
					continue
				}
				select {
				case c.ch <- req.frame:
				default:
					// Client buffer full; skip to avoid blocking the loop.
				}
			}

		case resp := <-b.countReqCh:
			resp <- len(sessions)
		}
	}
}

// Close gracefully stops the loop and closes all session channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new session for the given user. The session is
// implicitly a member of the user's personal topic for its whole lifetime.
// The first frame on the channel is a "session" event announcing the
// session id, which the client echoes on join/leave control calls.
func (b *Broker) Subscribe(userID int64) Session {
	c := &client{
		id:     uuid.New().String(),
		user:   userID,
		ch:     make(chan []byte, b.clientBuf),
		topics: make(map[string]struct{}),
	}
	s := Session{ID: c.id, C: c.ch}
	if b.closed.Load() {
		close(c.ch)
		return s
	}

	c.ch <- formatFrame("session", map[string]string{"sessionId": c.id})

	select {
	case b.subscribeCh <- subscribeReq{c: c, personal: UserTopic(userID)}:
	case <-b.stopped:
		close(c.ch)
	}
	return s
}

// Unsubscribe removes a session and all its topic memberships.
func (b *Broker) Unsubscribe(sessionID string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- sessionID:
	case <-b.stopped:
	}
}

// Join adds a session to a topic. userID must be the user the session was
// subscribed for; a session that is unknown, already disconnected, or owned
// by a different user reports false.
func (b *Broker) Join(sessionID string, userID int64, topic string) bool {
	return b.control(b.joinCh, sessionID, userID, topic)
}

// Leave removes a session from a topic under the same ownership rule as
// Join. Leaving a topic the session never joined is a no-op.
func (b *Broker) Leave(sessionID string, userID int64, topic string) bool {
	return b.control(b.leaveCh, sessionID, userID, topic)
}

func (b *Broker) control(ch chan topicReq, sessionID string, userID int64, topic string) bool {
	if b.closed.Load() {
		return false
	}
	req := topicReq{sessionID: sessionID, user: userID, topic: topic, resp: make(chan bool, 1)}
	select {
	case ch <- req:
	case <-b.stopped:
		return false
	}
	select {
	case ok := <-req.resp:
		return ok
	case <-b.stopped:
		return false
	}
}

// Publish routes an event to every session subscribed to topic, except the
// excluded originating session (empty string excludes nobody). Publishing to
// a topic with no subscribers is a no-op, never an error.
func (b *Broker) Publish(topic string, event Event, excludeSession string) {
	if b.closed.Load() {
		return
	}
	frame := formatFrame(event.Type, event.Data)
	if frame == nil {
		return
	}
	select {
	case b.publishCh <- publishReq{topic: topic, exclude: excludeSession, frame: frame}:
	case <-b.stopped:
	}
}

// SessionCount returns the number of connected sessions.
func (b *Broker) SessionCount() int {
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

func formatFrame(eventType string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, payload))
}
