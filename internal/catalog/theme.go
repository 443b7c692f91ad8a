package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/local"
)

// ColorScheme is what the operating system reports.
type ColorScheme string

const (
	SchemeLight   ColorScheme = "light"
	SchemeDark    ColorScheme = "dark"
	SchemeUnknown ColorScheme = ""
)

// Stored theme values.
const (
	themeDark  = "dark"
	themeLight = "light"
)

// Palette maps semantic roles to colors.
type Palette struct {
	Background    string
	Card          string
	Text          string
	TextSecondary string
	Primary       string
	Border        string
}

var (
	LightPalette = Palette{
		Background:    "#F9FAFB",
		Card:          "#FFFFFF",
		Text:          "#111827",
		TextSecondary: "#6B7280",
		Primary:       "#F59E0B",
		Border:        "#E5E7EB",
	}
	DarkPalette = Palette{
		Background:    "#111827",
		Card:          "#1F2937",
		Text:          "#F9FAFB",
		TextSecondary: "#9CA3AF",
		Primary:       "#F59E0B",
		Border:        "#374151",
	}
)

// Theme is the process-wide light/dark preference.
type Theme struct {
	store  *local.Serialized
	logger *zap.Logger

	mu     sync.RWMutex
	dark   bool
	subs   map[int]func(Palette)
	nextID int
}

// LoadTheme reads the stored preference, falling back to os and then to
// light.
func LoadTheme(ctx context.Context, store *local.Serialized, os ColorScheme, logger *zap.Logger) *Theme {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Theme{
		store:  store,
		logger: logger,
		dark:   os == SchemeDark,
		subs:   map[int]func(Palette){},
	}

	raw, ok, err := store.GetString(ctx, local.ThemeKey)
	switch {
	case err != nil:
		logger.Warn("failed to load theme", zap.Error(err))
	case !ok:
	case raw == themeDark:
		t.dark = true
	case raw == themeLight:
		t.dark = false
	default:
		logger.Warn("stored theme is malformed", zap.String("value", raw))
	}
	return t
}

func (t *Theme) IsDark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

func (t *Theme) Palette() Palette {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return paletteFor(t.dark)
}

func paletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// Toggle flips the preference, persists it and notifies subscribers. A
// persistence failure is logged and the new preference is kept.
func (t *Theme) Toggle(ctx context.Context) bool {
	t.mu.Lock()
	t.dark = !t.dark
	dark := t.dark
	value := themeLight
	if dark {
		value = themeDark
	}
	ticket := t.store.Reserve(local.ThemeKey)
	subs := make([]func(Palette), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	if _, err := t.store.Apply(ctx, ticket, value); err != nil {
		t.logger.Warn("failed to save theme", zap.String("value", value), zap.Error(err))
	}

	p := paletteFor(dark)
	for _, fn := range subs {
		fn(p)
	}
	return dark
}

// Subscribe registers fn to be called with the new palette after every
// toggle.
func (t *Theme) Subscribe(fn func(Palette)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

func (p Palette) String() string {
	return fmt.Sprintf("background=%s card=%s text=%s text-secondary=%s primary=%s border=%s",
		p.Background, p.Card, p.Text, p.TextSecondary, p.Primary, p.Border)
}
