package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/catalog"
	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
	"github.com/xtding233/gacha-wish/internal/store"
)

// Options wires a Server. Loader is required.
type Options struct {
	Loader    *catalog.Loader
	Store     *store.Store  // nil disables history
	Limiter   *rate.Limiter // nil disables throttling
	Logger    *slog.Logger
	Seed      *uint64 // default seed for sessions created without one
	MaxTrials int     // cap on /simulate trials

	MaxSessions int              // live sessions kept; the least recently used is evicted past it
	SessionTTL  time.Duration    // idle time after which Sweep drops a session; 0 keeps them
	Now         func() time.Time // clock, defaults to time.Now
}

// Server exposes banner sessions over HTTP. Sessions live in memory; each
// one is guarded by its own lock because handlers run concurrently.
type Server struct {
	loader    *catalog.Loader
	store     *store.Store
	limiter   *rate.Limiter
	logger    *slog.Logger
	seed      *uint64
	maxTrials int

	maxSessions int
	ttl         time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	id       string
	sess     *banner.Session
	lastUsed atomic.Int64 // unix nanos
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxTrials <= 0 {
		opts.MaxTrials = 20000
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		loader:      opts.Loader,
		store:       opts.Store,
		limiter:     opts.Limiter,
		logger:      opts.Logger,
		seed:        opts.Seed,
		maxTrials:   opts.MaxTrials,
		maxSessions: opts.MaxSessions,
		ttl:         opts.SessionTTL,
		now:         opts.Now,
		sessions:    make(map[string]*entry),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /banners", s.handleBanners)
	mux.Handle("POST /sessions", s.throttle(http.HandlerFunc(s.handleCreate)))
	mux.HandleFunc("GET /sessions/{id}", s.handleState)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDelete)
	mux.Handle("POST /sessions/{id}/wish", s.throttle(http.HandlerFunc(s.handleWish)))
	mux.Handle("POST /sessions/{id}/wish10", s.throttle(http.HandlerFunc(s.handleWishTen)))
	mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /simulate", s.handleSimulate)
	return mux
}

// CheckCatalog re-resolves every banner and reports the failures.
func (s *Server) CheckCatalog() map[banner.Kind]error {
	out := make(map[banner.Kind]error, len(banner.Kinds))
	for _, k := range banner.Kinds {
		cfg, err := s.loader.Resolve(k)
		if err == nil {
			_, err = banner.NewSession(cfg)
		}
		out[k] = err
	}
	return out
}

// Reload drops cached catalogs; sessions already running keep theirs.
func (s *Server) Reload() map[banner.Kind]error {
	s.loader.Invalidate()
	return s.CheckCatalog()
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeErr(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) newSession(kind banner.Kind, seed *uint64) (*entry, error) {
	cfg, err := s.loader.Resolve(kind)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		seed = s.seed
	}
	var opts []banner.Option
	if seed != nil {
		opts = append(opts, banner.WithRNG(gacha.NewSeededRNG(*seed)))
	}
	sess, err := banner.NewSession(cfg, opts...)
	if err != nil {
		return nil, err
	}
	e := &entry{id: uuid.NewString(), sess: sess}
	e.lastUsed.Store(s.now().UnixNano())

	s.mu.Lock()
	for len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[e.id] = e
	s.mu.Unlock()
	return e, nil
}

func (s *Server) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		e.lastUsed.Store(s.now().UnixNano())
	}
	return e, ok
}

// remove drops a session; it reports whether the session existed.
func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Server) evictOldestLocked() {
	var (
		oldest string
		at     int64
	)
	for id, e := range s.sessions {
		if t := e.lastUsed.Load(); oldest == "" || t < at {
			oldest, at = id, t
		}
	}
	delete(s.sessions, oldest)
	s.logger.Info("session evicted", "session", oldest, "reason", "max sessions")
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// it removed. It does nothing when no TTL is set.
func (s *Server) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl).UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if e.lastUsed.Load() < cutoff {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("idle sessions swept", "count", n)
	}
	return n
}

// Sessions is the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunSweeper calls Sweep every interval until ctx ends.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *Server) record(ctx context.Context, e *entry, firstSeq int, pulls []pulled) {
	if s.store == nil || len(pulls) == 0 {
		return
	}
	items := make([]item.Item, 0, len(pulls))
	for _, p := range pulls {
		items = append(items, p.Item)
	}
	if err := s.store.RecordPulls(ctx, e.id, string(e.sess.Kind()), firstSeq, items); err != nil {
		s.logger.Warn("record history failed", "session", e.id, "error", err)
	}
}

func parseUint(r *http.Request, key string) (*uint64, bool, string) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, false, ""
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, false, "invalid " + key
	}
	return &n, true, ""
}

func parseInt(r *http.Request, key string, def int) (int, string) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, ""
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, "invalid " + key
	}
	return n, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errResp{Err: err.Error()})
}
