// Package remote exposes a gimbal session over a WebSocket control
// endpoint, with periodic telemetry pushed to every client.
package remote

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"gimbalctl/siyi"
)

const telemetryInterval = 500 * time.Millisecond

// Server bridges WebSocket clients to one gimbal session
type Server struct {
	gimbal    *siyi.Gimbal
	clients   map[*client]bool
	clientsMu sync.RWMutex
	upgrader  websocket.Upgrader
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type client struct {
	conn   *websocket.Conn
	server *Server
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// New returns a server driving the given session
func New(gimbal *siyi.Gimbal) *Server {
	return &Server{
		gimbal:  gimbal,
		clients: make(map[*client]bool),
		stopCh:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local control tool
			},
		},
	}
}

// ListenAndServe serves the /ws endpoint on addr until Stop
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	go s.telemetryLoop()

	log.Infof("remote control listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// Stop disconnects every client and stops the telemetry loop
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.clientsMu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clientsMu.Unlock()
}

// telemetryLoop pushes the latest attitude and status snapshot to
// every connected client at a fixed rate.
func (s *Server) telemetryLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		case <-time.After(telemetryInterval):
		}
		att := s.gimbal.Attitude()
		info := s.gimbal.GimbalInfo()
		payload := TelemetryPayload{
			Yaw:       att.Yaw,
			Pitch:     att.Pitch,
			Roll:      att.Roll,
			ZoomLevel: s.gimbal.CurrentZoomLevel(),
			Recording: info.Recording.String(),
			Mode:      info.MotionMode.String(),
		}
		s.clientsMu.RLock()
		for c := range s.clients {
			c.sendMessage(TypeTelemetry, payload)
		}
		s.clientsMu.RUnlock()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade error: %v", err)
		return
	}

	c := &client{
		conn:   conn,
		server: s,
		send:   make(chan []byte, 256),
	}

	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	go c.writePump()
	go c.readPump()

	c.sendStatus()
}

func (c *client) sendStatus() {
	c.sendMessage(TypeStatus, StatusPayload{
		Connected:  c.server.gimbal.IsConnected(),
		Model:      c.server.gimbal.CameraModel().String(),
		HardwareID: c.server.gimbal.HardwareID(),
		Firmware:   c.server.gimbal.FirmwareVersion(),
	})
}

func (c *client) sendMessage(msgType string, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Errorf("failed to create message: %v", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("failed to marshal message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn("client send buffer full, dropping message")
	}
}

func (c *client) sendError(code, message string) {
	c.sendMessage(TypeError, ErrorPayload{Code: code, Message: message})
}

func (c *client) readPump() {
	defer func() {
		c.server.clientsMu.Lock()
		delete(c.server.clients, c)
		c.server.clientsMu.Unlock()
		c.close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("websocket error: %v", err)
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrInvalidMessage, "failed to parse message")
		return
	}

	g := c.server.gimbal
	switch msg.Type {
	case TypePing:
		var payload PingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.sendMessage(TypePong, PongPayload{
			ClientTimestamp: payload.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		})

	case TypeSpeed:
		var payload SpeedPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.reportCommand(g.RequestGimbalSpeed(payload.Yaw, payload.Pitch))

	case TypeAngles:
		var payload AnglesPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.reportCommand(g.RequestSetAngles(payload.Yaw, payload.Pitch))

	case TypeCenter:
		c.reportCommand(g.RequestCenter())

	case TypePhoto:
		c.reportCommand(g.RequestPhoto())

	case TypeRecord:
		c.reportCommand(g.RequestRecording())

	case TypeZoom:
		var payload ZoomPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.handleZoom(payload)

	case TypeMode:
		var payload ModePayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.handleMode(payload)

	default:
		log.Warnf("unknown message type %q", msg.Type)
	}
}

func (c *client) handleZoom(payload ZoomPayload) {
	g := c.server.gimbal
	if payload.Level > 0 {
		c.reportCommand(g.RequestAbsoluteZoom(payload.Level))
		return
	}
	switch payload.Direction {
	case "in":
		c.reportCommand(g.RequestZoomIn())
	case "out":
		c.reportCommand(g.RequestZoomOut())
	case "hold":
		c.reportCommand(g.RequestZoomHold())
	default:
		c.sendError(ErrInvalidMessage, "zoom direction must be in, out or hold")
	}
}

func (c *client) handleMode(payload ModePayload) {
	g := c.server.gimbal
	switch payload.Mode {
	case "fpv":
		c.reportCommand(g.RequestFPVMode())
	case "lock":
		c.reportCommand(g.RequestLockMode())
	case "follow":
		c.reportCommand(g.RequestFollowMode())
	default:
		c.sendError(ErrInvalidMessage, "mode must be fpv, lock or follow")
	}
}

func (c *client) reportCommand(err error) {
	if err == nil {
		return
	}
	log.Errorf("command failed: %v", err)
	code := ErrCommand
	if err == siyi.ErrNotConnected {
		code = ErrGimbalDisconnected
	}
	c.sendError(code, err.Error())
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
