package game

import (
	"testing"
	"time"
)

func TestCreateAndGet(t *testing.T) {
	h := NewHub(nil)
	g := h.Create()
	if g.ID == "" {
		t.Fatalf("expected a room id")
	}
	got, ok := h.Get(g.ID)
	if !ok || got != g {
		t.Fatalf("Get did not return the created room")
	}
	if _, ok := h.Get("missing"); ok {
		t.Fatalf("unknown room id must not resolve")
	}
}

func TestRemoveDiscardsRoom(t *testing.T) {
	h := NewHub(nil)
	g := h.Create()
	h.Remove(g.ID)
	if _, ok := h.Get(g.ID); ok {
		t.Fatalf("room survived Remove")
	}
	if h.Len() != 0 {
		t.Fatalf("Len = %d, want 0", h.Len())
	}
}

func TestReapIdleRooms(t *testing.T) {
	h := NewHub(nil)
	g := h.Create()

	g.Mu.Lock()
	g.LastSeen = time.Now().Add(-23 * time.Hour)
	g.Mu.Unlock()
	h.reap()
	if _, ok := h.Get(g.ID); !ok {
		t.Fatalf("room reaped before 24 hours of inactivity")
	}

	g.Mu.Lock()
	g.LastSeen = time.Now().Add(-25 * time.Hour)
	g.Mu.Unlock()
	h.reap()
	if _, ok := h.Get(g.ID); ok {
		t.Fatalf("room not reaped after 24 hours of inactivity")
	}
}

func TestJoinSeatsTwoThenSpectates(t *testing.T) {
	g := NewGame("test", nil)
	if role := g.Join("c1"); role != RolePlayer {
		t.Fatalf("first client role = %v, want player", role)
	}
	if role := g.Join("c2"); role != RolePlayer {
		t.Fatalf("second client role = %v, want player", role)
	}
	if role := g.Join("c3"); role != RoleSpectator {
		t.Fatalf("third client role = %v, want spectator", role)
	}
	if role := g.Join("c1"); role != RolePlayer {
		t.Fatalf("rejoin must keep the seat, got %v", role)
	}
}

func TestLateJoinerInheritsRemainingColor(t *testing.T) {
	g := NewGame("test", nil)
	g.Join("a")
	if rej := g.Reveal(2, 4, "a"); rej != nil {
		t.Fatalf("reveal rejected: %v", rej)
	}
	g.Join("b")
	if g.Colors["b"] != g.Colors["a"].Opposite() {
		t.Fatalf("late joiner color = %v, want opposite of %v", g.Colors["b"], g.Colors["a"])
	}
}

func TestRejoinKeepsBoundColor(t *testing.T) {
	g := NewGame("test", nil)
	g.Join("a")
	g.Join("b")
	if rej := g.Reveal(0, 0, "a"); rej != nil {
		t.Fatalf("reveal rejected: %v", rej)
	}
	was := g.Colors["a"]

	g.RemoveClient("a")
	if role := g.Join("a"); role != RolePlayer {
		t.Fatalf("rejoin role = %v, want player", role)
	}
	if g.Colors["a"] != was {
		t.Fatalf("rejoin changed a's color: was %v, now %v", was, g.Colors["a"])
	}
	if g.Colors["b"] != was.Opposite() {
		t.Fatalf("opponent binding disturbed by rejoin")
	}
}

func TestSecondStreamCloseKeepsSeat(t *testing.T) {
	g := NewGame("test", nil)
	g.Join("a")
	g.Join("b")
	if rej := g.Reveal(0, 0, "a"); rej != nil {
		t.Fatalf("reveal rejected: %v", rej)
	}

	g.Attach("a")
	g.Attach("a")
	if g.Detach("a") {
		t.Fatalf("closing one of two streams must not count as a disconnect")
	}
	if !g.State().Active {
		t.Fatalf("room went inactive while a stream remains")
	}
	if !g.Detach("a") {
		t.Fatalf("closing the last stream must report the disconnect")
	}
	if !g.RemoveClient("a") {
		t.Fatalf("expected abandonment once the last stream is gone")
	}
}

func TestRemoveClientAbandonsLiveGame(t *testing.T) {
	g := NewGame("test", nil)
	g.Join("a")
	g.Join("b")
	if rej := g.Reveal(0, 0, "a"); rej != nil {
		t.Fatalf("reveal rejected: %v", rej)
	}

	if !g.RemoveClient("a") {
		t.Fatalf("seated participant leaving mid-game must abandon the room")
	}
	if g.State().Active {
		t.Fatalf("room still active after abandonment")
	}
	if g.RemoveClient("zzz") {
		t.Fatalf("unknown client must not abandon the room")
	}
}

func TestRemoveClientBeforeStartIsQuiet(t *testing.T) {
	g := NewGame("test", nil)
	g.Join("a")
	if g.RemoveClient("a") {
		t.Fatalf("leaving before the first reveal should not abandon the room")
	}
	if !g.State().Active {
		t.Fatalf("room should stay active before the game starts")
	}
	if role := g.Join("b"); role != RolePlayer {
		t.Fatalf("freed seat must be claimable, got %v", role)
	}
}
