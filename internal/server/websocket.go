package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/wfm/internal/util"
	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/log"
)

type (
	// Socket is a WebSocket connection receiving workorder status events
	Socket struct {
		conn      *websocket.Conn
		consumer  topic.Consumer[*api.StatusEvent]
		filter    util.Set[api.WorkorderID]
		getStatus StatusFunc
		closeOnce sync.Once
	}

	// StatusFunc derives the current status of a workorder. It is used to
	// send a snapshot to a client as soon as it subscribes
	StatusFunc func(context.Context, api.WorkorderID) (*api.StatusEvent, error)
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4096
	wsBufferSize       = 1024
	incomingBufferSize = 16
	snapshotTimeout    = 5 * time.Second

	msgSubscribe  = "subscribe"
	msgSubscribed = "subscribed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades an HTTP connection to WebSocket and returns a
// Socket consuming status events. It returns nil if the upgrade fails
func HandleWebSocket(
	events topic.Topic[*api.StatusEvent], w http.ResponseWriter,
	r *http.Request, st StatusFunc,
) *Socket {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return nil
	}

	return &Socket{
		conn:      conn,
		consumer:  events.NewConsumer(),
		filter:    util.Set[api.WorkorderID]{},
		getStatus: st,
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	sock := HandleWebSocket(s.events, c.Writer, c.Request,
		func(ctx context.Context, id api.WorkorderID) (*api.StatusEvent, error) {
			return s.statusEvent(ctx, id, nil)
		},
	)
	if sock == nil {
		return
	}

	s.registerWebSocket(sock)
	go func() {
		defer s.unregisterWebSocket(sock)
		sock.run()
	}()
}

// Close terminates the connection. The socket stops once its reader
// notices
func (c *Socket) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

func (c *Socket) run() {
	defer func() {
		c.consumer.Close()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	for {
		select {
		case msg, ok := <-incoming:
			if !ok {
				return
			}
			if !c.handleSubscribe(msg) {
				return
			}

		case ev, ok := <-c.consumer.Receive():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.sendEventIfMatched(ev) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Socket) readMessages(incoming chan []byte) {
	defer close(incoming)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		incoming <- msg
	}
}

func (c *Socket) handleSubscribe(msg []byte) bool {
	var sub api.SubscribeRequest
	if err := json.Unmarshal(msg, &sub); err != nil {
		slog.Error("Failed to parse WebSocket message",
			log.Error(err))
		return true
	}

	if sub.Type != msgSubscribe {
		return true
	}

	c.filter = util.SetOf(sub.Data.WorkorderIDs...)
	ack := api.SubscribedResult{
		Type:         msgSubscribed,
		WorkorderIDs: sub.Data.WorkorderIDs,
	}
	if !c.write(ack) {
		return false
	}

	for _, id := range sub.Data.WorkorderIDs {
		if !c.sendSnapshot(id) {
			return false
		}
	}
	return true
}

func (c *Socket) sendSnapshot(id api.WorkorderID) bool {
	if c.getStatus == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	ev, err := c.getStatus(ctx, id)
	if err != nil {
		slog.Warn("Failed to get status for subscription",
			log.WorkorderID(id),
			log.Error(err))
		return true
	}
	return c.write(ev)
}

func (c *Socket) sendEventIfMatched(ev *api.StatusEvent) bool {
	if !c.filter.Contains(ev.WorkorderID) {
		return true
	}
	return c.write(ev)
}

func (c *Socket) write(v any) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		slog.Error("WebSocket write failed",
			log.Error(err))
		return false
	}
	return true
}

func (c *Socket) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}
