package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"banqi/internal/game"
)

func newTestHandler() *Handler {
	return NewHandler(game.NewHub(nil), nil)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	return body
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestHandleNewCreatesRoom(t *testing.T) {
	h := newTestHandler()
	rr := httptest.NewRecorder()
	h.HandleNew(rr, httptest.NewRequest(http.MethodPost, "/new", nil))

	body := decodeBody(t, rr)
	if body["ok"] != true {
		t.Fatalf("expected ok, got %v", body)
	}
	room, _ := body["room"].(string)
	if room == "" {
		t.Fatalf("expected a room code")
	}
	if _, ok := h.Hub.Get(room); !ok {
		t.Fatalf("room not registered in hub")
	}
}

func TestHandleStateRoomNotFound(t *testing.T) {
	h := newTestHandler()
	rr := httptest.NewRecorder()
	h.HandleState(rr, httptest.NewRequest(http.MethodGet, "/state/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["code"] != "room_not_found" {
		t.Fatalf("code = %v, want room_not_found", body["code"])
	}
}

func TestHandleRevealFlow(t *testing.T) {
	h := newTestHandler()
	g := h.Hub.Create()

	rr := postJSON(t, h.HandleReveal, "/reveal/"+g.ID, game.RevealRequest{ClientID: "a", Row: 0, Col: 0})
	body := decodeBody(t, rr)
	if body["ok"] != true {
		t.Fatalf("first reveal rejected: %v", body)
	}
	if body["yourColor"] == "" {
		t.Fatalf("revealer should learn their color")
	}
	state := body["state"].(map[string]any)
	if state["phase"] != string(game.PhaseInProgress) {
		t.Fatalf("phase = %v, want in_progress", state["phase"])
	}

	// same cell again, by the opponent: already face up
	rr = postJSON(t, h.HandleReveal, "/reveal/"+g.ID, game.RevealRequest{ClientID: "b", Row: 0, Col: 0})
	body = decodeBody(t, rr)
	if body["ok"] != false || body["code"] != "illegal_reveal" {
		t.Fatalf("expected illegal_reveal, got %v", body)
	}
}

func TestHandleMoveGating(t *testing.T) {
	h := newTestHandler()
	g := h.Hub.Create()

	// a reveals first and is bound; it is then b's turn
	rr := postJSON(t, h.HandleReveal, "/reveal/"+g.ID, game.RevealRequest{ClientID: "a", Row: 1, Col: 1})
	if decodeBody(t, rr)["ok"] != true {
		t.Fatalf("setup reveal failed")
	}

	rr = postJSON(t, h.HandleMove, "/move/"+g.ID, game.MoveRequest{ClientID: "a", FromRow: 1, FromCol: 1, ToRow: 1, ToCol: 2})
	body := decodeBody(t, rr)
	if body["ok"] != false || body["code"] != "not_your_turn" {
		t.Fatalf("expected not_your_turn, got %v", body)
	}
}

func TestHandleMoveBadJSON(t *testing.T) {
	h := newTestHandler()
	g := h.Hub.Create()

	req := httptest.NewRequest(http.MethodPost, "/move/"+g.ID, bytes.NewReader([]byte("{nope")))
	rr := httptest.NewRecorder()
	h.HandleMove(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandleResetRequiresSeat(t *testing.T) {
	h := newTestHandler()
	g := h.Hub.Create()
	g.Join("a")
	g.Join("b")

	rr := postJSON(t, h.HandleReset, "/reset/"+g.ID, game.ResetRequest{ClientID: "c"})
	body := decodeBody(t, rr)
	if body["ok"] != false || body["code"] != "not_your_turn" {
		t.Fatalf("expected spectator reset to be rejected, got %v", body)
	}

	rr = postJSON(t, h.HandleReset, "/reset/"+g.ID, game.ResetRequest{ClientID: "a"})
	body = decodeBody(t, rr)
	if body["ok"] != true {
		t.Fatalf("seated reset rejected: %v", body)
	}
	state := body["state"].(map[string]any)
	if state["phase"] != string(game.PhaseAwaitingFirstReveal) {
		t.Fatalf("phase after reset = %v", state["phase"])
	}
}

func TestHandleStatsWithoutStore(t *testing.T) {
	h := newTestHandler()
	rr := httptest.NewRecorder()
	h.HandleStats(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	body := decodeBody(t, rr)
	if body["ok"] != true {
		t.Fatalf("stats should succeed with archiving disabled: %v", body)
	}
}
