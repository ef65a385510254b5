package game

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func newTestLobby() *Lobby {
	return NewLobby("lobby-1", Participant{ID: "host", Name: "Hosty"})
}

func TestLobbyDuplicateJoin(t *testing.T) {
	l := newTestLobby()

	if _, err := l.Join(Participant{ID: "p2", Name: "Two"}); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	_, err := l.Join(Participant{ID: "p2", Name: "Two"})
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("second join = %v, want ErrAlreadyJoined", err)
	}
	if got := len(l.Participants()); got != 2 {
		t.Errorf("participant count = %d, want 2 after duplicate join", got)
	}
}

func TestLobbyHostOnlyStart(t *testing.T) {
	l := newTestLobby()
	if _, err := l.Join(Participant{ID: "p2", Name: "Two"}); err != nil {
		t.Fatal(err)
	}

	if _, err := l.Start("p2"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host start = %v, want ErrNotHost", err)
	}
	if l.Status() != LobbyOpen {
		t.Fatal("rejected start must leave the lobby open")
	}

	order, err := l.Start("host")
	if err != nil {
		t.Fatalf("host start failed: %v", err)
	}
	if len(order) != 2 || order[0].ID != "host" || order[1].ID != "p2" {
		t.Errorf("start returned order %v, want join order", order)
	}

	if _, err := l.Join(Participant{ID: "p3"}); !errors.Is(err, ErrLobbyClosed) {
		t.Errorf("join after start = %v, want ErrLobbyClosed", err)
	}
}

func TestLobbyHostOnlyCancel(t *testing.T) {
	l := newTestLobby()

	if err := l.Cancel("p2"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host cancel = %v, want ErrNotHost", err)
	}
	if err := l.Cancel("host"); err != nil {
		t.Fatalf("host cancel failed: %v", err)
	}
	if l.Status() != LobbyCancelled {
		t.Fatal("cancel must be terminal")
	}
	if _, err := l.Start("host"); !errors.Is(err, ErrLobbyClosed) {
		t.Errorf("start after cancel = %v, want ErrLobbyClosed", err)
	}
}

// Joins race with each other and with the host's start; the lobby must
// serialize them so no participant-set mutation is lost and the final list
// is duplicate-free.
func TestLobbyConcurrentJoins(t *testing.T) {
	l := newTestLobby()

	const joiners = 32
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := ParticipantID(fmt.Sprintf("p%d", n))
			_, err := l.Join(Participant{ID: id})
			if err != nil && !errors.Is(err, ErrLobbyClosed) {
				t.Errorf("join %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	order, err := l.Start("host")
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != joiners+1 {
		t.Fatalf("got %d participants, want %d", len(order), joiners+1)
	}
	seen := make(map[ParticipantID]bool)
	for _, p := range order {
		if seen[p.ID] {
			t.Fatalf("duplicate participant %s", p.ID)
		}
		seen[p.ID] = true
	}
}
