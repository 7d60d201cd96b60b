package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Hub streams a Log to websocket clients.
//
// A new client first gets the Log's current events and then every
// subsequent event.  A client can send "snapshot" to get whatever the
// Hub's Snapshot function returns (usually the roster and the
// mailbox).
//
// Every message to a client is a JSON object with either an "event"
// or a "snapshot" property.
type Hub struct {
	Log *Log

	// Snapshot, if not nil, provides the response to a "snapshot"
	// request.
	Snapshot func() interface{}

	// Verbose turns on logging.
	Verbose bool

	upgrader websocket.Upgrader
}

// NewHub makes a Hub for the Log.
func NewHub(l *Log, snapshot func() interface{}) *Hub {
	return &Hub{
		Log:      l,
		Snapshot: snapshot,
	}
}

// HubMsg is what a Hub sends to clients.
type HubMsg struct {
	Event    *Event      `json:"event,omitempty"`
	Snapshot interface{} `json:"snapshot,omitempty"`
}

func (h *Hub) logf(format string, args ...interface{}) {
	if h.Verbose {
		log.Printf("Hub."+format, args...)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error", err)
		return
	}
	defer c.Close()

	id := c.RemoteAddr().String()
	h.logf("ServeHTTP %s connected", id)

	// Subscribe before reading the backlog so nothing falls
	// between the two.
	events, unsubscribe := h.Log.Subscribe(1024)
	defer unsubscribe()
	backlog := h.Log.Events()

	requests := make(chan string, 8)
	done := make(chan bool)

	go func() {
		defer close(done)

		write := func(m *HubMsg) bool {
			js, err := json.Marshal(m)
			if err != nil {
				log.Printf("Hub marshal error %v on %#v", err, m)
				return true
			}
			if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
				h.logf("ServeHTTP %s write error %s", id, err)
				return false
			}
			return true
		}

		var last int64
		for i := range backlog {
			e := backlog[i]
			if !write(&HubMsg{Event: &e}) {
				return
			}
			last = e.Seq
		}

		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				if e.Seq <= last {
					continue
				}
				if !write(&HubMsg{Event: &e}) {
					return
				}
			case req, ok := <-requests:
				if !ok {
					return
				}
				if req != "snapshot" {
					continue
				}
				var snap interface{} = map[string]interface{}{}
				if h.Snapshot != nil {
					snap = h.Snapshot()
				}
				if !write(&HubMsg{Snapshot: snap}) {
					return
				}
			}
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			h.logf("ServeHTTP %s read error %s", id, err)
			break
		}
		select {
		case requests <- strings.TrimSpace(string(message)):
		case <-done:
		}
	}
	close(requests)
	<-done
}
