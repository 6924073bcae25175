package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"figtrace/internal/game"
	"figtrace/internal/viewmodel"
	"figtrace/pkg/trace"
	"figtrace/views/pages"
)

type HomeHandler struct {
	store *game.Store
	cfg   trace.Config
}

func NewHomeHandler(store *game.Store, cfg trace.Config) *HomeHandler {
	return &HomeHandler{store: store, cfg: cfg}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/games", h.createGame)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	lib := h.store.Library()
	data := viewmodel.HomePage{
		Title:   "Figtrace",
		Figures: make([]viewmodel.FigureOption, 0, lib.Len()),
	}
	for i, f := range lib.Figures {
		opt := viewmodel.FigureOption{Index: i, Name: f.Name, Edges: len(f.Records), Valid: true}
		if _, err := trace.LoadFigure(f.Records, h.cfg); err != nil {
			opt.Valid = false
			opt.Error = err.Error()
		}
		data.Figures = append(data.Figures, opt)
	}
	render(w, r, pages.HomePage(data))
}

func (h *HomeHandler) createGame(w http.ResponseWriter, r *http.Request) {
	instance := h.store.CreateGame()
	setOwnerCookie(w, instance.ID, instance.OwnerToken, time.Now())
	http.Redirect(w, r, "/game/"+instance.ID, http.StatusSeeOther)
}
