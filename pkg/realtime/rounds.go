package realtime

import "time"

// Rounds holds the timing state for a sequence of rounds that get shorter as
// the player advances. A round ends either by Complete, which starts the next
// round after Cooldown, or by running out of time, which ends the whole run.
// It holds no game-specific state; the game composes it and reacts to Advance.
type Rounds struct {
	Durations    []time.Duration
	Cooldown     time.Duration
	CurrentRound int
	RoundStarted time.Time
	CompletedAt  time.Time
	ExpiredAt    time.Time
}

// DefaultCooldown is the pause between a completed round and the next one.
const DefaultCooldown = 500 * time.Millisecond

// RoundDurations returns count durations of longest/(i+1), stopping before
// the first one shorter than shortest. There is always at least one round.
func RoundDurations(longest, shortest time.Duration, count int) []time.Duration {
	if count < 1 {
		count = 1
	}
	out := make([]time.Duration, 0, count)
	for i := 0; i < count; i++ {
		d := longest / time.Duration(i+1)
		if d < shortest {
			break
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		out = append(out, longest)
	}
	return out
}

// Total returns the number of rounds.
func (t *Rounds) Total() int { return len(t.Durations) }

// Duration returns the length of the current round, or zero before Start.
func (t *Rounds) Duration() time.Duration {
	if t.CurrentRound < 1 || t.CurrentRound > len(t.Durations) {
		return 0
	}
	return t.Durations[t.CurrentRound-1]
}

// Deadline returns when the current round runs out.
func (t *Rounds) Deadline() time.Time {
	return t.RoundStarted.Add(t.Duration())
}

// Running reports whether the current round accepts input at now.
func (t *Rounds) Running(now time.Time) bool {
	return !t.RoundStarted.IsZero() && t.CompletedAt.IsZero() && t.ExpiredAt.IsZero() &&
		!now.After(t.Deadline())
}

// Start begins the first round at now.
func (t *Rounds) Start(now time.Time) {
	t.CurrentRound = 1
	t.RoundStarted = now
	t.CompletedAt = time.Time{}
	t.ExpiredAt = time.Time{}
}

// Complete marks the current round as won at now. It returns false if the
// round was not running.
func (t *Rounds) Complete(now time.Time) bool {
	if !t.Running(now) {
		return false
	}
	t.CompletedAt = now
	return true
}

// NextWake returns the next time the round state should advance, and whether
// the schedule is active.
func (t *Rounds) NextWake(now time.Time) (time.Time, bool) {
	if t.RoundStarted.IsZero() || !t.ExpiredAt.IsZero() {
		return time.Time{}, false
	}
	if t.CompletedAt.IsZero() {
		return t.Deadline(), true
	}
	next := t.CompletedAt.Add(t.Cooldown)
	if now.After(next) {
		return now, true
	}
	return next, true
}

// Advance updates timing state based on now. A round past its deadline sets
// ExpiredAt and finishes the run. A completed round past its cooldown starts
// the next round, or finishes the run after the last one.
func (t *Rounds) Advance(now time.Time) (advanced bool, finished bool) {
	if t.RoundStarted.IsZero() || !t.ExpiredAt.IsZero() {
		return false, false
	}
	if t.CompletedAt.IsZero() {
		if now.After(t.Deadline()) {
			t.ExpiredAt = t.Deadline()
			return true, true
		}
		return false, false
	}
	if now.Before(t.CompletedAt.Add(t.Cooldown)) {
		return false, false
	}
	if t.CurrentRound >= len(t.Durations) {
		return true, true
	}
	t.CurrentRound++
	t.RoundStarted = now
	t.CompletedAt = time.Time{}
	return true, false
}
