package handlers

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/docstore"
	"tailor-backend/internal/livequery"
	"tailor-backend/internal/logger"
	"tailor-backend/internal/metrics"
	"tailor-backend/internal/middleware"
	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
)

// Every collection readable over /api/live is user-owned, so each query is
// narrowed to the caller's own documents.
const (
	liveWriteWait      = 10 * time.Second
	livePongWait       = 60 * time.Second
	livePingPeriod     = livePongWait * 9 / 10
	liveMaxMessage     = 64 << 10
	liveMaxSubscribers = 32
)

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (auth.Session, error)
}

// LiveHandler serves live query results over a WebSocket.
//
// Client messages:
//
//	{"type":"auth","token":"<jwt>"}
//	{"type":"subscribe","id":"c1","path":"customers","constraints":[...],"listen":true}
//	{"type":"unsubscribe","id":"c1"}
//
// Server messages:
//
//	{"type":"session","state":"authenticated"}
//	{"type":"result","id":"c1","data":[...]|null,"loading":false,"error":"..."}
//	{"type":"error","id":"c1","error":"..."}
type LiveHandler struct {
	Store    docstore.Client
	Sessions SessionResolver
	upgrader websocket.Upgrader
}

func NewLiveHandler(store docstore.Client, sessions SessionResolver, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		Store:    store,
		Sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

type liveClientMessage struct {
	Type        string             `json:"type"`
	Token       string             `json:"token,omitempty"`
	ID          string             `json:"id,omitempty"`
	Path        string             `json:"path,omitempty"`
	Constraints []query.Constraint `json:"constraints,omitempty"`
	Listen      bool               `json:"listen,omitempty"`
}

type liveServerMessage struct {
	Type    string           `json:"type"`
	ID      string           `json:"id,omitempty"`
	State   string           `json:"state,omitempty"`
	Data    []map[string]any `json:"data"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
}

type liveSubscription struct {
	hook *livequery.Hook[map[string]any]
	cfg  livequery.Config
}

type liveConn struct {
	h   *LiveHandler
	ws  *websocket.Conn
	ctx context.Context
	log *zap.Logger

	writeMu sync.Mutex

	session auth.Session
	subs    map[string]*liveSubscription
}

// ServeLive upgrades the request. A bearer token on the upgrade request
// authenticates the connection at once; otherwise the session stays loading
// until the client sends an auth message.
func (h *LiveHandler) ServeLive(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromContext(r.Context()).Warn("WebSocket upgrade error", zap.Error(err))
		return
	}
	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	c := &liveConn{
		h:       h,
		ws:      ws,
		ctx:     ctx,
		log:     logger.FromContext(r.Context()).With(zap.String("component", "live")),
		session: auth.Loading(),
		subs:    make(map[string]*liveSubscription),
	}
	if token := r.URL.Query().Get("token"); token != "" {
		c.authenticate(token)
	} else if token, ok := middleware.BearerToken(r); ok {
		c.authenticate(token)
	}

	stopPing := make(chan struct{})
	var pingDone sync.WaitGroup
	pingDone.Add(1)
	go func() {
		defer pingDone.Done()
		c.pingLoop(stopPing)
	}()

	c.readLoop()

	close(stopPing)
	ws.Close()
	pingDone.Wait()
	for _, sub := range c.subs {
		sub.hook.Close()
	}
}

func (c *liveConn) readLoop() {
	c.ws.SetReadLimit(liveMaxMessage)
	c.ws.SetReadDeadline(time.Now().Add(livePongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var msg liveClientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("live connection closed", zap.Error(err))
			}
			return
		}
		switch msg.Type {
		case "auth":
			c.authenticate(msg.Token)
		case "subscribe":
			c.subscribe(msg)
		case "unsubscribe":
			c.unsubscribe(msg.ID)
		default:
			c.send(liveServerMessage{Type: "error", ID: msg.ID, Error: "unknown message type " + msg.Type})
		}
	}
}

func (c *liveConn) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// authenticate resolves the token and re-runs every subscription with the
// new identity. An empty or invalid token signs the connection out.
func (c *liveConn) authenticate(token string) {
	session := auth.Anonymous()
	if token != "" {
		s, err := c.h.Sessions.Resolve(c.ctx, token)
		if err != nil {
			c.log.Debug("live auth rejected", zap.Error(err))
		} else {
			session = s
		}
	}
	c.session = session
	c.send(liveServerMessage{Type: "session", State: session.State.String()})

	for _, sub := range c.subs {
		sub.hook.Update(scoped(sub.cfg, session), session)
	}
}

func (c *liveConn) subscribe(msg liveClientMessage) {
	if msg.ID == "" {
		c.send(liveServerMessage{Type: "error", Error: "subscription id is required"})
		return
	}
	if !slices.Contains(models.Collections, msg.Path) {
		c.send(liveServerMessage{Type: "error", ID: msg.ID, Error: "unknown collection " + msg.Path})
		return
	}
	cfg := livequery.Config{
		Path:        msg.Path,
		Constraints: msg.Constraints,
		Listen:      msg.Listen,
		RequireAuth: true,
	}

	sub, ok := c.subs[msg.ID]
	if !ok {
		if len(c.subs) >= liveMaxSubscribers {
			c.send(liveServerMessage{Type: "error", ID: msg.ID, Error: "too many subscriptions"})
			return
		}
		id := msg.ID
		hook := livequery.New(c.ctx, c.h.Store,
			func(res livequery.Result[map[string]any]) { c.render(id, res) },
			livequery.WithDecoder(func(d docstore.Document) (map[string]any, error) { return d.Flatten(), nil }),
		)
		sub = &liveSubscription{hook: hook}
		c.subs[msg.ID] = sub
	}
	sub.cfg = cfg
	sub.hook.Update(scoped(cfg, c.session), c.session)
}

func (c *liveConn) unsubscribe(id string) {
	sub, ok := c.subs[id]
	if !ok {
		return
	}
	delete(c.subs, id)
	sub.hook.Close()
}

func (c *liveConn) render(id string, res livequery.Result[map[string]any]) {
	msg := liveServerMessage{Type: "result", ID: id, Data: res.Data, Loading: res.Loading}
	if res.Err != nil {
		msg.Error = res.Err.Error()
	}
	c.send(msg)
}

func (c *liveConn) send(msg liveServerMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := c.ws.WriteJSON(msg); err != nil {
		c.log.Debug("live write failed", zap.Error(err))
	}
}

// scoped prepends the owner filter for an authenticated session. Anonymous
// and loading sessions never reach the store, so they need no filter.
func scoped(cfg livequery.Config, session auth.Session) livequery.Config {
	if !session.IsAuthenticated() {
		return cfg
	}
	constraints := make([]query.Constraint, 0, len(cfg.Constraints)+1)
	constraints = append(constraints, query.Where("userId", query.Eq, session.UserID()))
	constraints = append(constraints, cfg.Constraints...)
	cfg.Constraints = constraints
	return cfg
}
