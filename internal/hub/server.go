package hub

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HarshithaPadmanabha/StudyHub/internal/roomid"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	// Clients are terminal apps and do not send a browser origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and attaches the connection to the hub.
func ServeWs(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("Failed to upgrade connection", "error", err)
			return
		}

		c := newClient(h, conn)
		select {
		case h.register <- c:
		case <-h.done:
			conn.Close()
			return
		}

		go c.writePump()
		go c.readPump()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Room server is healthy."))
}

// meetHandler answers room links opened in a browser with join instructions.
func meetHandler(w http.ResponseWriter, r *http.Request) {
	roomID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/meet/"), "/")
	if roomID == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Join this room with:\n\n  studyhub join %s\n", roomID)
}

// newRoomHandler suggests a room name nobody is using right now.
func newRoomHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := roomid.New(func(id string) bool { return h.RoomSize(r.Context(), id) > 0 })
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, id)
	}
}

// NewHandler routes the websocket endpoint, health check, metrics and room
// links. A nil gatherer disables /metrics.
func NewHandler(h *Hub, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ServeWs(h))
	mux.HandleFunc("/health", healthCheckHandler)
	mux.HandleFunc("/meet/", meetHandler)
	mux.HandleFunc("/new", newRoomHandler(h))
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}
