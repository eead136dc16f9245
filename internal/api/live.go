package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/debounce"
)

const liveWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The daemon listens on loopback; browsers on any local origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Live handles GET /live. Each message is a SearchRequest; the answer is sent
// once no newer request arrived for the search debounce window, so only the
// latest query of a burst is ranked.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("live upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(resp LiveResponse) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Debug("live write failed", zap.Error(err))
		}
	}

	pending := debounce.New(h.config.Search.DebounceDuration())
	defer pending.Cancel()

	var seq uint64
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		seq++
		current := seq

		var req SearchRequest
		if err := json.Unmarshal(data, &req); err != nil {
			pending.Cancel()
			apiErr := ErrInvalidJSON.WithDetails(err.Error())
			send(LiveResponse{Seq: current, Error: &apiErr})
			continue
		}

		pending.Trigger(func() {
			resp, apiErr := h.search(req)
			if apiErr != nil {
				send(LiveResponse{Seq: current, Error: apiErr})
				return
			}
			send(LiveResponse{Seq: current, SearchResponse: *resp})
		})
	}
}
