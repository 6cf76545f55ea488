package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	// writeWait is the deadline for one outbound frame.
	writeWait = 10 * time.Second

	// pongWait is how long a client may stay silent.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served behind basic auth on a private appliance;
	// origin enforcement happens in the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamStats upgrades the connection and pushes a stats snapshot every
// cache interval until the client goes away. Each connected client
// shares the same cached snapshot, so extra dashboards are free.
func (s *Server) streamStats(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	interval := s.config.Cache.StatsTTL
	if interval <= 0 {
		interval = 5 * time.Second
	}

	// Reader goroutine: the client sends nothing we care about, but the
	// read pump must drain control frames and notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
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
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	ctx := c.Request().Context()

	send := func() error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(s.aggregator.Snapshot(ctx))
	}
	if err := send(); err != nil {
		return nil
	}

	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return nil
		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := send(); err != nil {
				return nil
			}
		}
	}
}
