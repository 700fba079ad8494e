// Package server exposes the session over HTTP for the dashboard: JSON
// endpoints for every book operation, the position-size calculator, the
// daily report, and a websocket feed that pushes the full snapshot after
// every mutation.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/journal"
	"github.com/rustyeddy/slotbook/report"
	"github.com/rustyeddy/slotbook/session"
	"github.com/rustyeddy/slotbook/sizer"
)

// TradeLister reads back closed trades for the report endpoint. The
// SQLite journal satisfies it; CSV and Nop journals do not, in which
// case the report renders without the closed-trades section.
type TradeLister interface {
	ListTradesClosedBetween(start, end time.Time) ([]journal.TradeRecord, error)
}

// Server handles dashboard requests against one session.
type Server struct {
	sess   *session.Session
	hub    *Hub
	trades TradeLister
}

// Option configures a Server.
type Option func(*Server)

// WithTradeLister enables the closed-trades section of GET /report.
func WithTradeLister(tl TradeLister) Option {
	return func(s *Server) { s.trades = tl }
}

// New builds a server. The hub may be nil when websockets are not
// wanted (tests).
func New(sess *session.Session, hub *Hub, opts ...Option) *Server {
	s := &Server{sess: sess, hub: hub}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/book", s.handleGetBook)
		r.Post("/book/init", s.handleInitBook)

		r.Route("/positions/{slot}", func(r chi.Router) {
			r.Post("/fill", s.handleFill)
			r.Post("/price", s.handlePrice)
			r.Post("/sell", s.handleSell)
			r.Post("/stop", s.handleStop)
			r.Post("/reset", s.handleReset)
			r.Post("/grade", s.handleGrade)
			r.Post("/notes", s.handleNotes)
		})

		r.Post("/sizer", s.handleSizer)
		r.Get("/sizer", s.handleGetSizer)
		r.Get("/report", s.handleReport)

		if s.hub != nil {
			r.Get("/ws", s.hub.HandleWS)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bookResponse pairs the snapshot with its aggregates, matching what
// the websocket feed carries so the UI renders both the same way.
type bookResponse struct {
	Book    book.Book    `json:"book"`
	Summary book.Summary `json:"summary"`
}

func (s *Server) handleGetBook(w http.ResponseWriter, _ *http.Request) {
	// One snapshot for both fields; separate Book/Summary calls could
	// straddle a mutation.
	b := s.sess.Book()
	writeJSON(w, http.StatusOK, bookResponse{Book: b, Summary: bookSummary(b)})
}

func (s *Server) handleInitBook(w http.ResponseWriter, r *http.Request) {
	var cfg book.Config
	if !decodeBody(w, r, &cfg) {
		return
	}

	b, err := s.sess.Initialize(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookResponse{Book: b, Summary: bookSummary(b)})
}

// positionResponse is the per-slot mutation result. StopBreached is only
// meaningful on price updates.
type positionResponse struct {
	Position     book.Position `json:"position"`
	Summary      book.Summary  `json:"summary"`
	StopBreached bool          `json:"stop_breached,omitempty"`
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Symbol   string          `json:"symbol"`
		Price    decimal.Decimal `json:"price"`
		Quantity int64           `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.sess.Fill(r.Context(), slot, req.Symbol, req.Price, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: p, Summary: s.sess.Summary()})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, breached, err := s.sess.UpdatePrice(r.Context(), slot, req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{
		Position:     p,
		Summary:      s.sess.Summary(),
		StopBreached: breached,
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var order book.SellOrder
	if !decodeBody(w, r, &order) {
		return
	}

	p, err := s.sess.Sell(r.Context(), slot, order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: p, Summary: s.sess.Summary()})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}

	p, err := s.sess.Stop(r.Context(), slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: p, Summary: s.sess.Summary()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}

	p, err := s.sess.Reset(r.Context(), slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: p, Summary: s.sess.Summary()})
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Grade int `json:"grade"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.sess.SetGrade(r.Context(), slot, req.Grade)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: p, Summary: s.sess.Summary()})
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.sess.SetNotes(r.Context(), slot, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: p, Summary: s.sess.Summary()})
}

// handleSizer computes a position size and persists the inputs so the
// calculator survives a page reload.
func (s *Server) handleSizer(w http.ResponseWriter, r *http.Request) {
	var in sizer.Inputs
	if !decodeBody(w, r, &in) {
		return
	}

	result := sizer.Calculate(in)
	if err := s.sess.SaveSizer(r.Context(), in); err != nil {
		slog.Error("persist sizer inputs failed", "err", err)
	}

	writeJSON(w, http.StatusOK, struct {
		Inputs sizer.Inputs `json:"inputs"`
		Result sizer.Result `json:"result"`
	}{in, result})
}

func (s *Server) handleGetSizer(w http.ResponseWriter, r *http.Request) {
	in, err := s.sess.LoadSizer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Inputs sizer.Inputs `json:"inputs"`
		Result sizer.Result `json:"result"`
	}{in, sizer.Calculate(in)})
}

// handleReport renders the daily Org-mode report as text/plain.
func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().UTC()

	var trades []journal.TradeRecord
	if s.trades != nil {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		var err error
		trades, err = s.trades.ListTradesClosedBetween(start, start.AddDate(0, 0, 1))
		if err != nil {
			slog.Error("list closed trades failed", "err", err)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Render(s.sess.Book(), trades, now)))
}

func bookSummary(b book.Book) book.Summary {
	return (&b).Summary()
}

// slotParam parses the 1-based slot from the URL; range checking is the
// engine's job.
func slotParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "slot must be an integer"})
		return 0, false
	}
	return slot, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto HTTP statuses: an unknown slot is
// 404, every other rule violation is 422, anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, book.ErrUnknownSlot):
		status = http.StatusNotFound
	case errors.Is(err, book.ErrInvalidInput),
		errors.Is(err, book.ErrPortionBudgetExceeded),
		errors.Is(err, book.ErrNoPortionsRemaining),
		errors.Is(err, book.ErrNoOpenQuantity),
		errors.Is(err, book.ErrInsufficientShares):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "err", err)
	}
}
