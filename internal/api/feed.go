package api

import (
	"net/http"
	"sync"
	"time"

	"kaban_bot/internal/middleware"
	"kaban_bot/internal/model"
	"kaban_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedSendBuffer = 16
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type subscriber struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// FeedHub fans meeting events out to connected mini-app clients. A client that
// cannot keep up misses events rather than slowing the bot down.
type FeedHub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subscribers: make(map[*subscriber]struct{})}
}

func (h *FeedHub) Publish(event model.MeetingEvent) {
	log := logger.Logger()

	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal feed event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subscribers {
		select {
		case s.send <- data:
		default:
			log.Warn("feed subscriber is lagging, event dropped",
				zap.Int64("telegram_id", s.userID),
				zap.String("event", string(event.Type)))
		}
	}
}

func (h *FeedHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *FeedHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subscribers {
		delete(h.subscribers, s)
		close(s.send)
	}
}

func (h *FeedHub) add(conn *websocket.Conn, userID int64) *subscriber {
	s := &subscriber{userID: userID, conn: conn, send: make(chan []byte, feedSendBuffer)}

	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()

	return s
}

func (h *FeedHub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
}

type feedRoutes struct {
	hub *FeedHub
}

func NewFeedRoutes(handler *gin.RouterGroup, hub *FeedHub, guards ...gin.HandlerFunc) {
	r := &feedRoutes{hub: hub}
	h := handler.Group("")
	h.Use(guards...)
	h.GET("/feed", r.Subscribe)
}

func (r *feedRoutes) Subscribe(c *gin.Context) {
	log := logger.Logger()

	user, ok := c.MustGet(middleware.UserContextKey).(*model.User)
	if !ok {
		log.Error("invalid type assertion for user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	s := r.hub.add(conn, user.TelegramID)
	log.Info("feed subscriber connected", zap.Int64("telegram_id", user.TelegramID))

	go s.writeLoop()
	s.readLoop()

	r.hub.remove(s)
	log.Info("feed subscriber disconnected", zap.Int64("telegram_id", user.TelegramID))
}

// readLoop discards client messages and returns once the connection is gone.
func (s *subscriber) readLoop() {
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Logger().Info("websocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

func (s *subscriber) writeLoop() {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
