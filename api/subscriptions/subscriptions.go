// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/api/events"
	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10

	eventBufferSize = 64
)

type Subscriptions struct {
	node     *node.Node
	upgrader *websocket.Upgrader
	done     chan struct{}
	closed   bool
	mu       sync.Mutex // guards closed and wg.Add against Close
	wg       sync.WaitGroup
}

// New creates the subscription service. An origin "*" accepts any origin.
func New(n *node.Node, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		node: n,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func parseEventCriteria(req *http.Request) (*logdb.EventCriteria, error) {
	query := req.URL.Query()
	var criteria logdb.EventCriteria
	if s := query.Get("addr"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "addr")
		}
		criteria.Address = &addr
	}
	for i, key := range []string{"t0", "t1", "t2", "t3", "t4"} {
		if s := query.Get(key); s != "" {
			topic, err := thor.ParseBytes32(s)
			if err != nil {
				return nil, errors.WithMessage(err, key)
			}
			criteria.Topics[i] = &topic
		}
	}
	return &criteria, nil
}

func matches(c *logdb.EventCriteria, ev *logdb.Event) bool {
	if c.Address != nil && *c.Address != ev.Address {
		return false
	}
	for i, topic := range c.Topics {
		if topic == nil {
			continue
		}
		if ev.Topics[i] == nil || *ev.Topics[i] != *topic {
			return false
		}
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	criteria, err := parseEventCriteria(req)
	if err != nil {
		return restutil.BadRequest(err)
	}

	if !s.enter() {
		return restutil.HTTPError(errors.New("shutting down"), http.StatusServiceUnavailable)
	}
	defer s.wg.Done()

	// subscribed before the handshake completes, so no event after it is missed
	ch := make(chan []*logdb.Event, eventBufferSize)
	sub := s.node.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go s.readPump(conn, closed)

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			s.writeClose(conn, websocket.CloseGoingAway, "shutting down")
			return nil
		case <-closed:
			return nil
		case err := <-sub.Err():
			if err != nil {
				logger.Debug("subscription failed", "err", err)
			}
			s.writeClose(conn, websocket.CloseGoingAway, "subscription closed")
			return nil
		case evs := <-ch:
			for _, ev := range evs {
				if !matches(criteria, ev) {
					continue
				}
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return nil
				}
				if err := conn.WriteJSON(events.ConvertEvent(ev)); err != nil {
					logger.Debug("write failed", "err", err)
					return nil
				}
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// readPump discards client messages and reports when the connection is gone.
func (s *Subscriptions) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriptions) writeClose(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// enter registers a handler unless Close has been called.
func (s *Subscriptions) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Close terminates all subscriptions and waits for them to return.
// It is safe to call more than once.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
