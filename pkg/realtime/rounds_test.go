package realtime

import (
	"testing"
	"time"
)

func TestRoundDurations(t *testing.T) {
	got := RoundDurations(10*time.Second, 500*time.Millisecond, 50)
	if len(got) != 20 {
		t.Fatalf("len %d, want 20", len(got))
	}
	if got[0] != 10*time.Second {
		t.Errorf("first %v, want 10s", got[0])
	}
	if got[1] != 5*time.Second {
		t.Errorf("second %v, want 5s", got[1])
	}
	if got[19] != 500*time.Millisecond {
		t.Errorf("last %v, want 500ms", got[19])
	}
}

func TestRoundDurations_AtLeastOne(t *testing.T) {
	got := RoundDurations(100*time.Millisecond, time.Second, 0)
	if len(got) != 1 || got[0] != 100*time.Millisecond {
		t.Errorf("got %v, want [100ms]", got)
	}
}

func TestRounds_NextWake_NotStarted(t *testing.T) {
	tr := Rounds{Durations: []time.Duration{time.Minute}, Cooldown: DefaultCooldown}
	next, ok := tr.NextWake(time.Now().UTC())
	if ok {
		t.Error("NextWake should return false when not started")
	}
	if !next.IsZero() {
		t.Error("next should be zero")
	}
}

func TestRounds_NextWake_ActiveRound(t *testing.T) {
	now := time.Now().UTC()
	tr := Rounds{Durations: []time.Duration{100 * time.Millisecond}, Cooldown: DefaultCooldown}
	tr.Start(now)
	next, ok := tr.NextWake(now)
	if !ok {
		t.Fatal("NextWake should return true when active")
	}
	if !next.Equal(now.Add(100 * time.Millisecond)) {
		t.Errorf("next %v, want %v", next, now.Add(100*time.Millisecond))
	}
}

func TestRounds_ExpiryFinishes(t *testing.T) {
	now := time.Now().UTC()
	tr := Rounds{Durations: []time.Duration{50 * time.Millisecond, 25 * time.Millisecond}, Cooldown: 20 * time.Millisecond}
	tr.Start(now)

	advanced, finished := tr.Advance(now.Add(10 * time.Millisecond))
	if advanced || finished {
		t.Error("should not advance before the deadline")
	}
	advanced, finished = tr.Advance(now.Add(60 * time.Millisecond))
	if !advanced || !finished {
		t.Errorf("advanced=%v finished=%v, want true true", advanced, finished)
	}
	if tr.ExpiredAt.IsZero() {
		t.Error("ExpiredAt should be set")
	}
	if _, ok := tr.NextWake(now.Add(time.Second)); ok {
		t.Error("expired schedule should not wake again")
	}
}

func TestRounds_CompleteThenNext(t *testing.T) {
	now := time.Now().UTC()
	tr := Rounds{Durations: []time.Duration{50 * time.Millisecond, 25 * time.Millisecond}, Cooldown: 20 * time.Millisecond}
	tr.Start(now)

	if !tr.Complete(now.Add(10 * time.Millisecond)) {
		t.Fatal("Complete should succeed while running")
	}
	if tr.Complete(now.Add(11 * time.Millisecond)) {
		t.Error("second Complete should fail")
	}
	advanced, finished := tr.Advance(now.Add(20 * time.Millisecond))
	if advanced || finished {
		t.Error("should not advance during cooldown")
	}
	advanced, finished = tr.Advance(now.Add(40 * time.Millisecond))
	if !advanced || finished {
		t.Errorf("advanced=%v finished=%v, want true false", advanced, finished)
	}
	if tr.CurrentRound != 2 || tr.Duration() != 25*time.Millisecond {
		t.Errorf("round %d duration %v, want 2 and 25ms", tr.CurrentRound, tr.Duration())
	}
	if !tr.CompletedAt.IsZero() {
		t.Error("CompletedAt should be cleared for the next round")
	}
}

func TestRounds_CompleteLastFinishes(t *testing.T) {
	now := time.Now().UTC()
	tr := Rounds{Durations: []time.Duration{50 * time.Millisecond}, Cooldown: 20 * time.Millisecond}
	tr.Start(now)
	tr.Complete(now)
	advanced, finished := tr.Advance(now.Add(30 * time.Millisecond))
	if !advanced || !finished {
		t.Errorf("advanced=%v finished=%v, want true true", advanced, finished)
	}
}

func TestRounds_CompleteAfterDeadline(t *testing.T) {
	now := time.Now().UTC()
	tr := Rounds{Durations: []time.Duration{50 * time.Millisecond}}
	tr.Start(now)
	if tr.Complete(now.Add(time.Second)) {
		t.Error("Complete after the deadline should fail")
	}
}
