package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"banqi/internal/game"
	"banqi/pkg/utils"
)

// Msg is the websocket intent envelope: a type tag plus free-form
// payload. Server-to-client messages reuse the kind-tagged JSON shapes
// the SSE stream carries, so both transports speak the same state.
type Msg struct {
	T string         `json:"t"`
	M map[string]any `json:"m,omitempty"`
}

// HandleWS serves the websocket transport for one room. Intents are
// reveal, move, reset, seat and state; rejections go back to the
// sending socket only, accepted actions broadcast to every watcher.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/ws/")
	g, ok := h.Hub.Get(id)
	if !ok {
		writeRoomNotFound(w)
		return
	}

	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = utils.RandomHex(8)
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}

	role := g.Join(clientID)
	g.Attach(clientID)
	send := make(chan []byte, 16)
	g.AddWatcher(send)
	g.Touch()
	log.Debug().Str("room", id).Str("client", clientID).Str("role", string(role)).Msg("ws attached")

	ctx := r.Context()

	// writer
	go func() {
		ping := time.NewTicker(15 * time.Second)
		defer func() {
			ping.Stop()
			_ = c.Close(websocket.StatusNormalClosure, "bye")
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-send:
				if !ok {
					return
				}
				_ = c.Write(ctx, websocket.MessageText, msg)
			case <-ping.C:
				_ = c.Ping(ctx)
			}
		}
	}()

	unicast := func(v any) {
		data, _ := json.Marshal(v)
		select {
		case send <- data:
		default:
		}
	}

	unicast(map[string]any{"kind": "joined", "clientId": clientID, "role": role})
	unicast(g.State())

	// reader
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		var m Msg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}

		switch m.T {
		case "reveal":
			row, okR := num(m.M, "row")
			col, okC := num(m.M, "col")
			if !okR || !okC {
				unicast(rejectedPayload(&game.Rejection{Code: game.CodeOutOfBounds, Reason: "missing coordinates"}))
				continue
			}
			if rej := g.Reveal(row, col, clientID); rej != nil {
				unicast(rejectedPayload(rej))
				continue
			}
			g.Broadcast()

		case "move":
			fr, ok1 := num(m.M, "fromRow")
			fc, ok2 := num(m.M, "fromCol")
			tr, ok3 := num(m.M, "toRow")
			tc, ok4 := num(m.M, "toCol")
			if !ok1 || !ok2 || !ok3 || !ok4 {
				unicast(rejectedPayload(&game.Rejection{Code: game.CodeOutOfBounds, Reason: "missing coordinates"}))
				continue
			}
			if rej := g.Move(fr, fc, tr, tc, clientID); rej != nil {
				unicast(rejectedPayload(rej))
				continue
			}
			g.Broadcast()

		case "reset":
			if role != game.RolePlayer {
				unicast(rejectedPayload(&game.Rejection{Code: game.CodeNotYourTurn, Reason: "spectators cannot reset"}))
				continue
			}
			g.Reset()
			g.Broadcast()

		case "seat":
			// late seat claim; rejected once both seats are taken
			role = g.Join(clientID)
			if role != game.RolePlayer {
				unicast(rejectedPayload(&game.Rejection{Code: game.CodeRoomFull, Reason: "both seats are taken"}))
				continue
			}
			unicast(map[string]any{"kind": "joined", "clientId": clientID, "role": role})

		case "state":
			unicast(g.State())

		case "pong":
			// ignore
		}
	}

	g.RemoveWatcher(send)
	close(send)
	if g.Detach(clientID) && role == game.RolePlayer && g.RemoveClient(clientID) {
		g.BroadcastPlayerLeft(clientID)
	}
	log.Debug().Str("room", id).Str("client", clientID).Msg("ws detached")
}

func rejectedPayload(rej *game.Rejection) map[string]any {
	return map[string]any{"kind": "rejected", "code": rej.Code, "error": rej.Reason}
}

func num(m map[string]any, key string) (int, bool) {
	v, ok := m[key].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}
