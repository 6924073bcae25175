package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"figtrace/internal/game"
	"figtrace/internal/preview"
)

type FigureHandler struct {
	store *game.Store
}

func NewFigureHandler(store *game.Store) *FigureHandler {
	return &FigureHandler{store: store}
}

func (h *FigureHandler) RegisterRoutes(r chi.Router) {
	r.Get("/figures/{file}", h.image)
}

func (h *FigureHandler) image(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	index, err := strconv.Atoi(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	fig, ok := h.store.Library().At(index)
	if !ok {
		http.NotFound(w, r)
		return
	}
	opts := preview.DefaultOptions()
	opts.Size = parseInt(r.URL.Query().Get("size"), opts.Size)
	if opts.Size < 32 {
		opts.Size = 32
	}
	if opts.Size > 1024 {
		opts.Size = 1024
	}
	opts.Labels = r.URL.Query().Get("labels") != "0"

	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, fig.Records, opts); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
