package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"figtrace/internal/game"
	"figtrace/internal/viewmodel"
	"figtrace/pkg/realtime"
	"figtrace/views/components"
	"figtrace/views/pages"
)

// maxPointerBatch bounds the body of one pointer request.
const maxPointerBatch = 1 << 20

type GameHandler struct {
	store   *game.Store
	baseURL string
}

// NewGameHandler serves game pages. baseURL, when set, is used for share
// links instead of the request host.
func NewGameHandler(store *game.Store, baseURL string) *GameHandler {
	return &GameHandler{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.gamePage)
		r.Post("/start", h.startGame)
		r.Post("/restart", h.restartGame)
		r.Post("/pointer", h.pointer)
		r.Get("/round", h.roundFragment)
		r.Get("/scores", h.scoresFragment)
		r.Get("/stream", h.stream)
	})
}

func (h *GameHandler) gamePage(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	isOwner := instance.IsOwner(ownerFromCookie(r, gameID))
	snapshot := instance.Snapshot(time.Now().UTC())
	data := viewmodel.GamePage{
		Title:    "Figtrace",
		GameID:   gameID,
		ShareURL: buildShareURL(r, h.baseURL, gameID),
		IsOwner:  isOwner,
		Status:   snapshot.Status,
		Round:    buildRoundFragment(snapshot, isOwner),
		Scores:   buildScoresFragment(snapshot, isOwner),
	}
	render(w, r, pages.GamePage(data))
}

func (h *GameHandler) startGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !instance.IsOwner(ownerFromCookie(r, gameID)) {
		http.Redirect(w, r, "/game/"+gameID, http.StatusSeeOther)
		return
	}
	if err := instance.Start(time.Now().UTC()); err != nil {
		log.Printf("start game=%s err=%v", gameID, err)
	}
	h.store.EnsureRoundLoop(gameID)
	h.store.Publish(gameID, realtime.Event{Name: game.EventRound}, realtime.Event{Name: game.EventScores})
	http.Redirect(w, r, "/game/"+gameID, http.StatusSeeOther)
}

func (h *GameHandler) restartGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !instance.IsOwner(ownerFromCookie(r, gameID)) {
		http.Redirect(w, r, "/game/"+gameID, http.StatusSeeOther)
		return
	}
	instance.Restart(time.Now().UTC())
	h.store.EnsureRoundLoop(gameID)
	h.store.WakeRoundLoop(gameID)
	h.store.Publish(gameID, realtime.Event{Name: game.EventRound}, realtime.Event{Name: game.EventScores})
	http.Redirect(w, r, "/game/"+gameID, http.StatusSeeOther)
}

func (h *GameHandler) pointer(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !instance.IsOwner(ownerFromCookie(r, gameID)) {
		http.Error(w, "only the player can draw", http.StatusForbidden)
		return
	}
	var batch []game.PointerEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPointerBatch)).Decode(&batch); err != nil {
		http.Error(w, "invalid pointer batch", http.StatusBadRequest)
		return
	}
	res, err := instance.Pointer(batch, time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	events := make([]realtime.Event, 0, len(res.Lines)+3)
	for _, angle := range res.Lines {
		events = append(events, realtime.Event{Name: game.EventLine, Data: formatAngle(angle)})
	}
	if res.HasAngle {
		events = append(events, realtime.Event{Name: game.EventAngle, Data: formatAngle(res.Angle)})
	}
	if res.Matched {
		log.Printf("figure traced game=%s direction=%s", gameID, res.Direction)
		h.store.WakeRoundLoop(gameID)
		events = append(events, realtime.Event{Name: game.EventRound}, realtime.Event{Name: game.EventScores})
	}
	if len(events) > 0 {
		h.store.Publish(gameID, events...)
	}
	writeJSON(w, res)
}

func (h *GameHandler) roundFragment(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	snapshot := instance.Snapshot(time.Now().UTC())
	isOwner := instance.IsOwner(ownerFromCookie(r, gameID))
	render(w, r, components.RoundFragment(buildRoundFragment(snapshot, isOwner)))
}

func (h *GameHandler) scoresFragment(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	snapshot := instance.Snapshot(time.Now().UTC())
	isOwner := instance.IsOwner(ownerFromCookie(r, gameID))
	render(w, r, components.ScoresFragment(buildScoresFragment(snapshot, isOwner)))
}

func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	instance, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	isOwner := instance.IsOwner(ownerFromCookie(r, gameID))

	hub := h.store.Broadcaster(gameID)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendSnapshot := func(includeRound bool, includeScores bool) {
		snapshot := instance.Snapshot(time.Now().UTC())
		if includeRound {
			writeSSE(w, game.EventRound, renderToString(r, components.RoundFragment(buildRoundFragment(snapshot, isOwner))))
		}
		if includeScores {
			writeSSE(w, game.EventScores, renderToString(r, components.ScoresFragment(buildScoresFragment(snapshot, isOwner))))
		}
		flusher.Flush()
	}

	sendSnapshot(true, true)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				// The game was removed.
				return
			}
			switch event.Name {
			case game.EventRound:
				sendSnapshot(true, false)
			case game.EventScores:
				sendSnapshot(false, true)
			case game.EventAngle, game.EventLine:
				writeSSE(w, event.Name, event.Data)
				flusher.Flush()
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func ownerFromCookie(r *http.Request, gameID string) string {
	cookie, err := r.Cookie(ownerCookieName(gameID))
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setOwnerCookie(w http.ResponseWriter, gameID string, token string, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     ownerCookieName(gameID),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(24 * time.Hour),
	})
}

func ownerCookieName(gameID string) string {
	return "figtrace_owner_" + gameID
}

func buildShareURL(r *http.Request, baseURL string, gameID string) string {
	if baseURL != "" {
		return baseURL + "/game/" + gameID
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/game/" + gameID
}

func buildRoundFragment(snapshot game.Snapshot, isOwner bool) viewmodel.RoundFragment {
	var nextRoundMs int64
	if !snapshot.NextRoundAt.IsZero() {
		nextRoundMs = snapshot.NextRoundAt.UnixMilli()
	}
	return viewmodel.RoundFragment{
		GameID:         snapshot.ID,
		Status:         snapshot.Status,
		IsOwner:        isOwner,
		CurrentRound:   snapshot.CurrentRound,
		TotalRounds:    snapshot.Rounds,
		RoundStartedMs: snapshot.RoundStarted.UnixMilli(),
		DurationMs:     snapshot.RoundDuration.Milliseconds(),
		FigureIndex:    snapshot.FigureIndex,
		FigureName:     snapshot.FigureName,
		FigureEdges:    snapshot.FigureEdges,
		Tolerance:      snapshot.Tolerance,
		Progress:       snapshot.Progress,
		Lost:           snapshot.Lost,
		Completed:      !snapshot.CompletedAt.IsZero(),
		NextRoundMs:    nextRoundMs,
		RoundKey:       buildRoundKey(snapshot),
	}
}

func buildScoresFragment(snapshot game.Snapshot, isOwner bool) viewmodel.ScoresFragment {
	return viewmodel.ScoresFragment{
		GameID:  snapshot.ID,
		Status:  snapshot.Status,
		IsOwner: isOwner,
		Points:  snapshot.Points,
		Best:    snapshot.Best,
		Message: snapshot.Message,
	}
}

func buildRoundKey(snapshot game.Snapshot) string {
	return strings.Join([]string{
		snapshot.Status,
		strconv.Itoa(snapshot.CurrentRound),
		strconv.FormatInt(snapshot.RoundStarted.UnixMilli(), 10),
		strconv.FormatInt(snapshot.CompletedAt.UnixMilli(), 10),
	}, "|")
}

func formatAngle(angle float64) string {
	return strconv.FormatFloat(angle, 'f', 1, 64)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}
