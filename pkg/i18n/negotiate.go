package i18n

import (
	"context"
	"errors"

	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source names the step that resolved a locale.
type Source string

const (
	FromSaved   Source = "saved"
	FromBackend Source = "backend"
	FromBrowser Source = "browser"
	FromDefault Source = "default"
)

// LocaleSuggester asks the backend for a locale suggestion.
type LocaleSuggester interface {
	GetCurrentLocale(ctx context.Context, opts ...client.RequestOption) (string, error)
}

// Negotiator resolves the visitor's locale: saved choice, then backend
// suggestion, then browser language, then Default. The result is persisted
// so the saved choice wins on the next visit.
type Negotiator struct {
	store   storage.Store
	backend LocaleSuggester
	logger  zerolog.Logger
}

// NewNegotiator creates a negotiator. backend may be nil.
func NewNegotiator(store storage.Store, backend LocaleSuggester) *Negotiator {
	return &Negotiator{
		store:   store,
		backend: backend,
		logger:  log.With().Str("component", "locale").Logger(),
	}
}

// Negotiate resolves the locale for a visitor whose browser reports
// acceptLanguage.
func (n *Negotiator) Negotiate(ctx context.Context, acceptLanguage string) (Locale, Source) {
	saved, err := n.store.Get(ctx, storage.LocaleKey)
	switch {
	case err == nil && IsSupported(saved):
		return Locale(saved), FromSaved
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		n.logger.Warn().Err(err).Msg("Could not read saved locale")
	}

	locale, source := n.resolve(ctx, acceptLanguage)
	n.persist(ctx, locale)
	n.logger.Debug().Str("locale", string(locale)).Str("source", string(source)).Msg("Locale negotiated")
	return locale, source
}

func (n *Negotiator) resolve(ctx context.Context, acceptLanguage string) (Locale, Source) {
	if n.backend != nil {
		suggested, err := n.backend.GetCurrentLocale(ctx)
		if err == nil && IsSupported(suggested) {
			return Locale(suggested), FromBackend
		}
		if err != nil {
			n.logger.Debug().Err(err).Msg("Could not determine backend locale, falling back to browser language")
		}
	}

	if locale, ok := MatchLocale(acceptLanguage); ok {
		return locale, FromBrowser
	}
	return Default, FromDefault
}

// Save persists an explicit choice.
func (n *Negotiator) Save(ctx context.Context, locale Locale) {
	n.persist(ctx, locale)
}

func (n *Negotiator) persist(ctx context.Context, locale Locale) {
	if err := n.store.Set(ctx, storage.LocaleKey, string(locale)); err != nil {
		n.logger.Warn().Err(err).Str("locale", string(locale)).Msg("Could not save locale")
	}
}
