package watch

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

const (
	readTimeout = 60 * time.Second
	writeWait   = 5 * time.Second
	outboxSize  = 256
)

// ReloadMessage is a build event sent to browsers.
type ReloadMessage struct {
	Type      string     `json:"type"` // building, css, reload, error or success
	Timestamp int64      `json:"timestamp"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Files     []string   `json:"files,omitempty"`
	Duration  float64    `json:"duration,omitempty"` // milliseconds
}

// ErrorInfo is the compile error shown in the browser overlay.
type ErrorInfo struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// ErrorInfoFrom describes err for the browser overlay. Positions are
// 1-based.
func ErrorInfoFrom(path string, err error) *ErrorInfo {
	var ce *errors.CompilerError
	if !stderrors.As(err, &ce) {
		return &ErrorInfo{Message: err.Error(), File: path}
	}
	return &ErrorInfo{
		Message: ce.Message,
		File:    ce.Location.File,
		Line:    ce.Location.Line + 1,
		Column:  ce.Location.Column + 1,
		Code:    ce.Code,
		Kind:    ce.Kind.String(),
	}
}

// ReloadServer pushes build events to connected browsers over WebSocket.
// Messages are delivered in the order they were sent.
type ReloadServer struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	outbox    chan *ReloadMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewReloadServer starts a reload server. A nil logger discards output.
func NewReloadServer(logger *zap.Logger) *ReloadServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	rs := &ReloadServer{
		logger:  logger.Named("reload"),
		clients: map[*websocket.Conn]struct{}{},
		outbox:  make(chan *ReloadMessage, outboxSize),
		done:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin:     localOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	go rs.deliver()
	return rs
}

// localOrigin accepts requests without an Origin and pages served from the
// local machine.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	origin = strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	return strings.HasPrefix(origin, "localhost") || strings.HasPrefix(origin, "127.0.0.1")
}

// HandleWebSocket upgrades the request and keeps the client until it
// disconnects.
func (rs *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rs.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	rs.mu.Lock()
	select {
	case <-rs.done:
		rs.mu.Unlock()
		conn.Close()
		return
	default:
	}
	rs.clients[conn] = struct{}{}
	n := len(rs.clients)
	rs.mu.Unlock()
	rs.logger.Debug("client connected", zap.Int("clients", n))

	go rs.drain(conn)
}

// drain reads until the client goes away so close frames and pongs are
// processed, then drops the client.
func (rs *ReloadServer) drain(conn *websocket.Conn) {
	defer rs.drop(conn)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				rs.logger.Debug("client error", zap.Error(err))
			}
			return
		}
	}
}

func (rs *ReloadServer) drop(conn *websocket.Conn) {
	rs.mu.Lock()
	_, ok := rs.clients[conn]
	delete(rs.clients, conn)
	n := len(rs.clients)
	rs.mu.Unlock()

	if ok {
		conn.Close()
		rs.logger.Debug("client disconnected", zap.Int("clients", n))
	}
}

func (rs *ReloadServer) deliver() {
	for {
		select {
		case <-rs.done:
			return
		case msg := <-rs.outbox:
			rs.broadcast(msg)
		}
	}
}

func (rs *ReloadServer) broadcast(msg *ReloadMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		rs.logger.Error("encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	rs.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(rs.clients))
	for conn := range rs.clients {
		conns = append(conns, conn)
	}
	rs.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			rs.logger.Debug("send failed", zap.Error(err))
			rs.drop(conn)
		}
	}
}

func (rs *ReloadServer) send(msg *ReloadMessage) {
	msg.Timestamp = time.Now().Unix()
	select {
	case rs.outbox <- msg:
	case <-rs.done:
	}
}

// NotifyBuilding tells clients a rebuild of files started.
func (rs *ReloadServer) NotifyBuilding(files []string) {
	rs.send(&ReloadMessage{Type: "building", Files: files})
}

// NotifyCSS tells clients to swap the stylesheets at urls.
func (rs *ReloadServer) NotifyCSS(urls []string) {
	rs.send(&ReloadMessage{Type: "css", Files: urls})
}

// NotifySuccess tells clients the build finished.
func (rs *ReloadServer) NotifySuccess(duration time.Duration) {
	rs.send(&ReloadMessage{Type: "success", Duration: float64(duration.Milliseconds())})
}

// NotifyReload asks clients for a full page reload.
func (rs *ReloadServer) NotifyReload() {
	rs.send(&ReloadMessage{Type: "reload"})
}

// NotifyError shows a build error in clients.
func (rs *ReloadServer) NotifyError(info *ErrorInfo) {
	rs.send(&ReloadMessage{Type: "error", Error: info})
}

// ConnectionCount returns the number of connected clients.
func (rs *ReloadServer) ConnectionCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.clients)
}

// Close disconnects every client and stops delivery. It is safe to call
// more than once.
func (rs *ReloadServer) Close() {
	rs.closeOnce.Do(func() {
		rs.mu.Lock()
		close(rs.done)
		conns := rs.clients
		rs.clients = map[*websocket.Conn]struct{}{}
		rs.mu.Unlock()

		for conn := range conns {
			conn.Close()
		}
	})
}
