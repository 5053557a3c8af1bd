package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/cart"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/money"
)

const cartKey = "cart"

type cartResponse struct {
	cart.State
	FormattedTotal string `json:"formattedTotal"`
}

func newCartResponse(state cart.State) cartResponse {
	currency := ""
	if len(state.Items) > 0 {
		currency = state.Items[0].Product.Currency
	}
	return cartResponse{
		State:          state,
		FormattedTotal: money.Format(state.TotalAmount, currency),
	}
}

func (s *server) loadCart(ctx context.Context) cart.State {
	var state cart.State
	raw := s.sessions.GetBytes(ctx, cartKey)
	if len(raw) == 0 {
		return state
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding unreadable session cart")
		return cart.State{}
	}
	return state
}

// dispatch applies actions to the session cart and stores the result.
// The animation cue is a client concern and never persisted.
func (s *server) dispatch(ctx context.Context, actions ...cart.Action) cart.State {
	state := s.loadCart(ctx)
	for _, action := range actions {
		state = cart.Reduce(state, action)
	}
	state = cart.Reduce(state, cart.EndAnimation{})

	raw, err := json.Marshal(state)
	if err != nil {
		s.logger.Error().Err(err).Msg("Could not encode session cart")
		return state
	}
	s.sessions.Put(ctx, cartKey, raw)
	return state
}

func (s *server) handleCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(s.loadCart(r.Context())))
}

func (s *server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(s.dispatch(r.Context(), cart.ClearCart{})))
}

type addItemRequest struct {
	Slug     string `json:"slug"`
	Quantity int    `json:"quantity"`
}

func (s *server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	slug := strings.TrimSpace(req.Slug)

	product, _, err := cache.GetOrFetch(r.Context(), s.cache, cache.ProductKey(slug), func(ctx context.Context) (client.ProductDetail, error) {
		return s.api.GetProduct(ctx, slug)
	})
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	state := s.dispatch(r.Context(), cart.AddItem{Product: product, Quantity: req.Quantity}, cart.OpenCart{})
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state := s.dispatch(r.Context(), cart.UpdateQuantity{ProductID: id, Quantity: req.Quantity})
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

func (s *server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	state := s.dispatch(r.Context(), cart.RemoveItem{ProductID: id})
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
