package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaimeStill/cardscan/pkg/openapi"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	pollInterval = 250 * time.Millisecond
)

func (h *Handler) newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || h.cors.Allows(origin) {
				return true
			}
			return sameHost(r, origin)
		},
	}
}

func sameHost(r *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// Events upgrades to a WebSocket and pushes a state frame whenever the
// state or notification changes. Frames omit the preview image; clients
// fetch /state when the preview id changes. Incoming messages are ignored.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	upgrader := h.newUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("event stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var last []byte
	push := func() error {
		data, err := json.Marshal(h.eventState())
		if err != nil {
			return err
		}
		if bytes.Equal(data, last) {
			return nil
		}
		last = data
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	h.logger.Debug("event stream opened", "remote", r.RemoteAddr)
	defer h.logger.Debug("event stream closed", "remote", r.RemoteAddr)

	if err := push(); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-h.lifecycle.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-poll.C:
			if err := push(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) eventState() StateResponse {
	resp := h.state()
	if resp.Preview != nil {
		p := *resp.Preview
		p.DataURI = ""
		resp.Preview = &p
	}
	return resp
}

var eventsOperation = &openapi.Operation{
	Summary:     "Stream state changes",
	Description: "WebSocket endpoint. Each text frame is a State document sent when the state or notification changes. Preview frames carry no data_uri.",
	Tags:        []string{"Client"},
	Responses: map[int]*openapi.Response{
		101: {Description: "Switching to the WebSocket protocol"},
		400: openapi.ResponseRef("BadRequest"),
	},
}
