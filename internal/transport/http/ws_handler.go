package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.InviteService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.InviteService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type ambiencePayload struct {
	Action string `json:"action"`
}

type errorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func errorMessage(err error) outboundMessage[any] {
	payload := errorPayload{Message: err.Error()}
	if kind := domain.KindOf(err); kind != "" {
		payload = errorPayload{Message: domain.Message(err), Kind: string(kind)}
	}
	return outboundMessage[any]{Type: "error", Payload: payload}
}

// ServeWS upgrades HTTP requests to websockets and binds the connection to one
// visitor. Passing ?visitorId= reattaches to a live visitor on this instance.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	snap, err := h.service.Connect(ctx, r.URL.Query().Get("visitorId"))
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	visitorID := snap.VisitorID

	updates, cancel, err := h.service.Subscribe(ctx, visitorID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer h.service.Leave(ctx, visitorID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	forward := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-closeSignals:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Cue == app.CueAmbienceStart {
					if !forward(outboundMessage[any]{Type: "ambience", Payload: ambiencePayload{Action: "start"}}) {
						return
					}
				}
				if !forward(outboundMessage[any]{Type: "view", Payload: update.Snapshot}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var cmd domain.Command
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &cmd); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid " + inbound.Type + " payload"}}
				continue
			}
		}
		cmd.Type = inbound.Type

		// the resulting view reaches the client through the subscription
		if _, err := h.service.Dispatch(ctx, visitorID, cmd); err != nil {
			send <- errorMessage(err)
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
