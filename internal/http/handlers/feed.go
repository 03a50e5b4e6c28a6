package handlers

import (
	"context"
	"net/http"
	"time"

	"transferportal/internal/domain"
	"transferportal/internal/events"
	"transferportal/internal/http/middleware"
	"transferportal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedReadLimit  = 512
)

// FeedReady is the first message on every feed connection, sent once the
// subscription is live.
const FeedReady = "feed.ready"

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The token query parameter authenticates the socket, so any origin may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// GET /api/ws/bookings?token=
func (h *Handler) BookingFeed(c *gin.Context) {
	if h.Bus == nil {
		respondError(c, http.StatusServiceUnavailable, "feed_unavailable", "live feed is not configured", nil)
		return
	}
	rc := middleware.GetRequestContext(c)
	reqID := middleware.GetRequestID(c)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	sub, unsubscribe, err := h.Bus.Subscribe(ctx)
	if err != nil {
		utils.LogError(reqID, "feed", "subscribe", err)
		respondError(c, http.StatusServiceUnavailable, "feed_unavailable", "live feed is not available", nil)
		return
	}
	defer unsubscribe()

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	utils.LogEvent(reqID, "feed", "connect", "subscribed", "user_id", rc.UserID, "role", rc.Role)

	go func() {
		defer cancel()
		conn.SetReadLimit(feedReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	if err := conn.WriteJSON(gin.H{"type": FeedReady, "at": utils.NowUTC()}); err != nil {
		return
	}

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()
	sent := 0
	defer func() {
		utils.LogEvent(reqID, "feed", "disconnect", "closed", "user_id", rc.UserID, "sent", sent)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if !visibleTo(rc, ev) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			sent++
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// visibleTo: admins see every event, users only their own bookings.
func visibleTo(rc domain.RequestContext, ev events.Event) bool {
	if rc.IsAdmin() {
		return true
	}
	return rc.UserID > 0 && ev.UserID == rc.UserID
}
