package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/gacha-wish/internal/item"
)

//go:embed data
var bundled embed.FS

// Bundled returns the catalog shipped with the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	return sub
}

// Paths helper for default/banner files, relative to the catalog root.
type Paths struct{}

func (Paths) DefaultPath() string { return "default.yaml" }

func (Paths) BannerPath(kind string) string {
	return path.Join("banners", kind+".yaml")
}

// Loader reads YAML catalogs and merges default → banner.
type Loader struct {
	fsys   fs.FS
	paths  Paths
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]RawConfig // key: banner kind
}

// NewLoader creates a catalog loader over fsys, e.g. os.DirFS(dir) or Bundled().
func NewLoader(fsys fs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fsys:   fsys,
		logger: logger,
		cache:  make(map[string]RawConfig),
	}
}

// LoadMerged loads and merges default → banner. The banner file is required,
// the default file is optional. It returns the merged RawConfig unvalidated.
func (l *Loader) LoadMerged(kind string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[kind]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.fsys, l.paths.DefaultPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	bannerCfg, err := readYAML(l.fsys, l.paths.BannerPath(kind))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read banner %s: %w", kind, err)
	}
	merged := mergeRaw(defCfg, bannerCfg)

	l.mu.Lock()
	l.cache[kind] = merged
	l.mu.Unlock()

	l.logger.Debug("catalog loaded", "banner", kind, "version", merged.Version, "items", len(merged.Items))
	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

func readYAML(fsys fs.FS, name string) (RawConfig, error) {
	var cfg RawConfig
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: b overrides a where set.
// Slices (items, off_probs) are replaced wholesale when b provides them.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	out.Items = append([]item.Item(nil), a.Items...)

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Name != "" {
		out.Name = b.Name
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if len(b.Items) > 0 {
		out.Items = append([]item.Item(nil), b.Items...)
	}

	m, bm := &out.Mechanics, b.Mechanics
	if bm.Base5 != nil {
		m.Base5 = bm.Base5
	}
	if bm.Base4 != nil {
		m.Base4 = bm.Base4
	}
	if bm.Pity5 != nil {
		m.Pity5 = bm.Pity5
	}
	if bm.Pity4 != nil {
		m.Pity4 = bm.Pity4
	}
	if bm.Budget != nil {
		m.Budget = bm.Budget
	}
	if bm.FirstPull != nil {
		m.FirstPull = bm.FirstPull
	}
	m.Soft5 = mergeSoft(m.Soft5, bm.Soft5)
	m.Soft4 = mergeSoft(m.Soft4, bm.Soft4)

	switch {
	case m.RateUp == nil && bm.RateUp != nil:
		c := *bm.RateUp
		m.RateUp = &c
	case m.RateUp != nil && bm.RateUp != nil:
		c := *m.RateUp
		if bm.RateUp.Enabled != nil {
			c.Enabled = bm.RateUp.Enabled
		}
		if len(bm.RateUp.OffProbs) > 0 {
			c.OffProbs = append([]float64(nil), bm.RateUp.OffProbs...)
		}
		if bm.RateUp.MaxOff != 0 {
			c.MaxOff = bm.RateUp.MaxOff
		}
		m.RateUp = &c
	}

	switch {
	case out.Cost == nil && b.Cost != nil:
		c := *b.Cost
		out.Cost = &c
	case out.Cost != nil && b.Cost != nil:
		c := *out.Cost
		if b.Cost.Name != "" {
			c.Name = b.Cost.Name
		}
		if b.Cost.PerDraw != nil {
			c.PerDraw = b.Cost.PerDraw
		}
		if b.Cost.PerTenDraw != nil {
			c.PerTenDraw = b.Cost.PerTenDraw
		}
		out.Cost = &c
	}

	return out
}

func mergeSoft(a, b *SoftCfg) *SoftCfg {
	switch {
	case b == nil:
		return a
	case a == nil:
		c := *b
		return &c
	}
	c := *a
	if b.StartAt != nil {
		c.StartAt = b.StartAt
	}
	if b.Target != nil {
		c.Target = b.Target
	}
	if b.Easing != "" {
		c.Easing = b.Easing
	}
	return &c
}
