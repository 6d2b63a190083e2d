package server

import (
	"errors"
	"net/http"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
	"github.com/xtding233/gacha-wish/internal/sim"
	"github.com/xtding233/gacha-wish/internal/store"
)

var (
	errNoSession = errors.New("session not found")
	errExhausted = errors.New("banner budget exhausted")
	errNoBatch   = errors.New("ten-pull unavailable: fewer than 10 pulls remain")
	errNoHistory = errors.New("history is disabled")
)

type errResp struct {
	Err string `json:"err"`
}

type pulled struct {
	Seq  int       `json:"seq"`
	Item item.Item `json:"item"`
}

type spent struct {
	Token string `json:"token"`
	Units int    `json:"units"`
}

type sessionResp struct {
	ID        string          `json:"id"`
	Banner    banner.Kind     `json:"banner"`
	Name      string          `json:"name"`
	State     gacha.PityState `json:"state"`
	Remaining *int            `json:"remaining,omitempty"` // budget-limited banners only
	Batch     bool            `json:"batch_available"`
}

type wishResp struct {
	Pulls []pulled    `json:"pulls"`
	Spent spent       `json:"spent"`
	State sessionResp `json:"session"`
}

type bannerResp struct {
	Kind   banner.Kind `json:"kind"`
	Name   string      `json:"name"`
	Pity5  int         `json:"pity5,omitempty"`
	Pity4  int         `json:"pity4,omitempty"`
	RateUp bool        `json:"rate_up"`
	Budget int         `json:"budget,omitempty"`
	Items  int         `json:"items"`
	Err    string      `json:"err,omitempty"`
}

type historyResp struct {
	Pulls  []store.Pull        `json:"pulls"`
	Counts map[item.Rating]int `json:"counts"`
}

func describe(e *entry) sessionResp {
	cfg := e.sess.Config()
	resp := sessionResp{
		ID:     e.id,
		Banner: cfg.Kind,
		Name:   cfg.Name,
		State:  e.sess.State(),
		Batch:  e.sess.BatchAvailable(),
	}
	if left, limited := e.sess.Remaining(); limited {
		resp.Remaining = &left
	}
	return resp
}

func (s *Server) handleBanners(w http.ResponseWriter, _ *http.Request) {
	out := make([]bannerResp, 0, len(banner.Kinds))
	for _, k := range banner.Kinds {
		cfg, err := s.loader.Resolve(k)
		if err != nil {
			out = append(out, bannerResp{Kind: k, Err: err.Error()})
			continue
		}
		out = append(out, bannerResp{
			Kind:   k,
			Name:   cfg.Name,
			Pity5:  cfg.Rates.Pity5,
			Pity4:  cfg.Rates.Pity4,
			RateUp: cfg.RateUp != nil,
			Budget: cfg.Budget,
			Items:  len(cfg.Items),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, err := banner.ParseKind(r.URL.Query().Get("banner"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	seed, _, msg := parseUint(r, "seed")
	if msg != "" {
		writeErr(w, http.StatusBadRequest, errors.New(msg))
		return
	}
	e, err := s.newSession(kind, seed)
	if err != nil {
		s.logger.Error("create session failed", "banner", kind, "error", err)
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("session created", "session", e.id, "banner", kind)
	writeJSON(w, http.StatusCreated, describe(e))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeErr(w, http.StatusNotFound, errNoSession)
		return
	}
	e.mu.Lock()
	resp := describe(e)
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.remove(id) {
		writeErr(w, http.StatusNotFound, errNoSession)
		return
	}
	s.logger.Info("session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWish(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeErr(w, http.StatusNotFound, errNoSession)
		return
	}

	e.mu.Lock()
	seq := e.sess.AttemptsCount() + 1
	it, ok := e.sess.RollOnce()
	if !ok {
		e.mu.Unlock()
		writeErr(w, http.StatusConflict, errExhausted)
		return
	}
	cost := e.sess.Config().Cost
	resp := wishResp{
		Pulls: []pulled{{Seq: seq, Item: it}},
		Spent: spent{Token: cost.Name, Units: cost.ForSingles(1)},
		State: describe(e),
	}
	e.mu.Unlock()

	s.record(r.Context(), e, seq, resp.Pulls)
	s.logger.Debug("wish", "session", e.id, "item", it.Name, "rating", int(it.Rating), "attempts", resp.State.State.TotalAttempts)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWishTen(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeErr(w, http.StatusNotFound, errNoSession)
		return
	}

	e.mu.Lock()
	seq := e.sess.AttemptsCount() + 1
	items, ok := e.sess.Roll()
	if !ok {
		e.mu.Unlock()
		writeErr(w, http.StatusConflict, errNoBatch)
		return
	}
	cost := e.sess.Config().Cost
	resp := wishResp{
		Pulls: make([]pulled, 0, len(items)),
		Spent: spent{Token: cost.Name, Units: cost.ForBatches(1)},
		State: describe(e),
	}
	for i, it := range items {
		resp.Pulls = append(resp.Pulls, pulled{Seq: seq + i, Item: it})
	}
	e.mu.Unlock()

	s.record(r.Context(), e, seq, resp.Pulls)
	s.logger.Debug("ten wish", "session", e.id, "attempts", resp.State.State.TotalAttempts)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.lookup(id); !ok {
		writeErr(w, http.StatusNotFound, errNoSession)
		return
	}
	if s.store == nil {
		writeErr(w, http.StatusNotImplemented, errNoHistory)
		return
	}
	limit, msg := parseInt(r, "limit", 100)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, errors.New(msg))
		return
	}
	pulls, err := s.store.History(r.Context(), id, limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	counts, err := s.store.RatingCounts(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResp{Pulls: pulls, Counts: counts})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, err := banner.ParseKind(q.Get("banner"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	goal := sim.GoalFirstFiveStar
	if g := q.Get("goal"); g != "" {
		if goal, err = sim.ParseGoal(g); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
	}
	trials, msg := parseInt(r, "trials", 1000)
	if msg == "" && (trials <= 0 || trials > s.maxTrials) {
		msg = "trials out of range"
	}
	draws, msg2 := parseInt(r, "draws", 90)
	seed, _, msg3 := parseUint(r, "seed")
	for _, m := range []string{msg, msg2, msg3} {
		if m != "" {
			writeErr(w, http.StatusBadRequest, errors.New(m))
			return
		}
	}
	var base uint64
	if seed != nil {
		base = *seed
	}

	cfg, err := s.loader.Resolve(kind)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	st, err := sim.RunMonteCarlo(sim.Params{Banner: cfg, Goal: goal, Trials: trials, Seed: base, NumDraws: draws})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
