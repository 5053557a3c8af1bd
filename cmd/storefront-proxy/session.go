package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Sternrassler/baltaragis-client/pkg/consent"
	"github.com/Sternrassler/baltaragis-client/pkg/i18n"
	"github.com/Sternrassler/baltaragis-client/pkg/storage"
)

const (
	// visitorCookie identifies a browser across sessions for durable storage.
	visitorCookie   = "baltaragis_visitor"
	visitorLifetime = 365 * 24 * time.Hour
)

// sessionStore keeps visitor values in the scs session of the request
// context it is called with.
type sessionStore struct {
	sessions *scs.SessionManager
}

func (s sessionStore) Get(ctx context.Context, key string) (string, error) {
	if !s.sessions.Exists(ctx, key) {
		return "", storage.ErrNotFound
	}
	return s.sessions.GetString(ctx, key), nil
}

func (s sessionStore) Set(ctx context.Context, key, value string) error {
	s.sessions.Put(ctx, key, value)
	return nil
}

func (s sessionStore) Delete(ctx context.Context, key string) error {
	s.sessions.Remove(ctx, key)
	return nil
}

// visitorStore returns where the visitor's locale and consent live: a
// namespace of the durable store keyed by the long-lived visitor cookie when
// one is configured, otherwise the session itself.
func (s *server) visitorStore(w http.ResponseWriter, r *http.Request) storage.Store {
	if s.durable == nil {
		return sessionStore{sessions: s.sessions}
	}
	return storage.Prefixed(s.durable, "visitor:"+visitorID(w, r)+":")
}

// visitorID reads the visitor cookie, issuing a new id when it is missing
// or malformed.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorLifetime / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type localeResponse struct {
	Locale      i18n.Locale `json:"locale"`
	Source      i18n.Source `json:"source,omitempty"`
	DisplayName string      `json:"displayName"`
	ShortName   string      `json:"shortName"`
}

func newLocaleResponse(locale i18n.Locale, source i18n.Source) localeResponse {
	return localeResponse{
		Locale:      locale,
		Source:      source,
		DisplayName: locale.DisplayName(),
		ShortName:   locale.ShortName(),
	}
}

func (s *server) handleLocale(w http.ResponseWriter, r *http.Request) {
	negotiator := i18n.NewNegotiator(s.visitorStore(w, r), s.api)
	locale, source := negotiator.Negotiate(r.Context(), r.Header.Get("Accept-Language"))
	writeJSON(w, http.StatusOK, newLocaleResponse(locale, source))
}

type saveLocaleRequest struct {
	Locale string `json:"locale"`
}

func (s *server) handleSaveLocale(w http.ResponseWriter, r *http.Request) {
	var req saveLocaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !i18n.IsSupported(req.Locale) {
		writeError(w, http.StatusBadRequest, "unsupported locale")
		return
	}

	locale := i18n.Locale(req.Locale)
	i18n.NewNegotiator(s.visitorStore(w, r), s.api).Save(r.Context(), locale)
	writeJSON(w, http.StatusOK, newLocaleResponse(locale, i18n.FromSaved))
}

type consentResponse struct {
	Status     consent.Status `json:"status"`
	ShowBanner bool           `json:"showBanner"`
	Analytics  bool           `json:"analytics"`
}

func newConsentResponse(m *consent.Manager) consentResponse {
	return consentResponse{
		Status:     m.Status(),
		ShowBanner: m.ShowBanner(),
		Analytics:  m.HasAnalytics(),
	}
}

func (s *server) handleConsent(w http.ResponseWriter, r *http.Request) {
	m := consent.NewManager(s.visitorStore(w, r))
	m.Load(r.Context())
	writeJSON(w, http.StatusOK, newConsentResponse(m))
}

func (s *server) handleConsentDecision(w http.ResponseWriter, r *http.Request) {
	m := consent.NewManager(s.visitorStore(w, r))

	var err error
	switch chi.URLParam(r, "decision") {
	case "accept":
		err = m.Accept(r.Context())
	case "decline":
		err = m.Decline(r.Context())
	default:
		writeError(w, http.StatusNotFound, "unknown consent decision")
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Could not store consent decision")
		writeError(w, http.StatusInternalServerError, "could not store consent decision")
		return
	}

	writeJSON(w, http.StatusOK, newConsentResponse(m))
}
