package i18n

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TranslationSource fetches translation bundles.
type TranslationSource interface {
	GetTranslations(ctx context.Context, locale string, opts ...client.RequestOption) (client.Translations, error)
}

// State is the observable translator state.
type State struct {
	Locale         Locale
	IsLoading      bool
	IsInitializing bool

	// Error describes the last failed bundle fetch, empty otherwise
	Error string
}

// Translator holds the active locale and its bundle. T never fails.
type Translator struct {
	source     TranslationSource
	negotiator *Negotiator
	cache      *cache.Cache
	logger     zerolog.Logger

	mu           sync.RWMutex
	locale       Locale
	translations map[string]string
	loading      bool
	initializing bool
	err          string
	generation   uint64
}

// Option configures a Translator.
type Option func(*Translator)

// WithCache serves bundles through the response cache with
// stale-while-revalidate.
func WithCache(c *cache.Cache) Option {
	return func(t *Translator) {
		t.cache = c
	}
}

// NewTranslator creates a translator in the initializing state.
func NewTranslator(source TranslationSource, negotiator *Negotiator, opts ...Option) *Translator {
	t := &Translator{
		source:       source,
		negotiator:   negotiator,
		logger:       log.With().Str("component", "translator").Logger(),
		locale:       Default,
		translations: map[string]string{},
		loading:      true,
		initializing: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init negotiates the locale and loads its bundle.
func (t *Translator) Init(ctx context.Context, acceptLanguage string) State {
	locale, _ := t.negotiator.Negotiate(ctx, acceptLanguage)

	t.mu.Lock()
	t.locale = locale
	t.initializing = false
	t.mu.Unlock()

	t.load(ctx, locale)
	return t.State()
}

// SetLocale switches to locale, persists the choice and loads its bundle.
// A later call supersedes an earlier one still in flight.
func (t *Translator) SetLocale(ctx context.Context, locale Locale) error {
	if !IsSupported(string(locale)) {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	t.negotiator.Save(ctx, locale)

	t.mu.Lock()
	t.locale = locale
	t.mu.Unlock()

	t.load(ctx, locale)
	return nil
}

// T returns the translation of key, or key itself when none is loaded.
func (t *Translator) T(key string) string {
	t.mu.RLock()
	v, ok := t.translations[key]
	locale := t.locale
	t.mu.RUnlock()

	if ok && v != "" {
		return v
	}
	if locale != Default {
		t.logger.Debug().Str("key", key).Str("locale", string(locale)).Msg("Translation key not found")
	}
	return key
}

// State returns the current state.
func (t *Translator) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return State{
		Locale:         t.locale,
		IsLoading:      t.loading,
		IsInitializing: t.initializing,
		Error:          t.err,
	}
}

// Translations returns a copy of the active bundle.
func (t *Translator) Translations() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.translations)
}

// load fetches the bundle for locale, falling back to Default and then to
// an empty bundle. Results of superseded loads are discarded.
func (t *Translator) load(ctx context.Context, locale Locale) {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.loading = true
	t.err = ""
	t.mu.Unlock()

	bundle, err := t.fetch(ctx, locale)
	active := locale
	errMsg := ""
	if err != nil {
		errMsg = fmt.Sprintf("Failed to load %s translations", locale.DisplayName())
		t.logger.Error().Err(err).Str("locale", string(locale)).Msg("Failed to fetch translations")

		bundle = map[string]string{}
		if locale != Default {
			fallback, ferr := t.fetch(ctx, Default)
			if ferr == nil {
				bundle = fallback
				active = Default
				t.logger.Warn().Str("locale", string(locale)).Msg("Using default locale translations")
			} else {
				t.logger.Error().Err(ferr).Msg("Failed to load fallback translations")
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return
	}
	t.translations = bundle
	t.locale = active
	t.err = errMsg
	t.loading = false
}

func (t *Translator) fetch(ctx context.Context, locale Locale) (map[string]string, error) {
	fetcher := client.Conditional(func(ctx context.Context, opts ...client.RequestOption) (client.Translations, error) {
		return t.source.GetTranslations(ctx, string(locale), opts...)
	})

	if t.cache != nil {
		bundle, _, err := cache.Load(ctx, t.cache, cache.TranslationsKey(string(locale)), fetcher)
		return bundle, err
	}

	res, err := fetcher(ctx, "")
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
