package cart

import (
	"sync"
	"time"

	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultAnimationDuration is how long IsAnimating stays set after a trigger.
const DefaultAnimationDuration = 400 * time.Millisecond

// Store holds a cart state and applies actions to it. It is safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	state     State
	animation time.Duration
	timer     *time.Timer
	timerSeq  uint64
	subs      map[int]func(State)
	nextSub   int
	logger    zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithAnimationDuration overrides the animation auto-clear delay.
func WithAnimationDuration(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.animation = d
		}
	}
}

// WithInitialState starts the store from a previously saved state. Totals
// are recomputed from the items.
func WithInitialState(state State) StoreOption {
	return func(s *Store) {
		state.IsAnimating = false
		s.state = withItems(state, state.Items)
	}
}

// NewStore creates an empty cart store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		animation: DefaultAnimationDuration,
		subs:      make(map[int]func(State)),
		logger:    log.With().Str("component", "cart").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change and returns a function
// removing it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies action and notifies subscribers. TriggerAnimation arms
// a timer that dispatches EndAnimation; a new trigger restarts it.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	state, subs := s.applyLocked(action)
	s.mu.Unlock()

	s.publish(action, state, subs)
	return state
}

// applyLocked must be called with s.mu held.
func (s *Store) applyLocked(action Action) (State, []func(State)) {
	s.state = Reduce(s.state, action)
	switch action.(type) {
	case TriggerAnimation:
		s.armTimer()
	case EndAnimation:
		s.stopTimer()
	}
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.state, subs
}

func (s *Store) publish(action Action, state State, subs []func(State)) {
	s.logger.Debug().
		Str("action", actionName(action)).
		Int("total_items", state.TotalItems).
		Int64("total_amount", state.TotalAmount).
		Msg("Cart updated")

	for _, fn := range subs {
		fn(state)
	}
}

// armTimer must be called with s.mu held.
func (s *Store) armTimer() {
	s.stopTimer()
	s.timerSeq++
	seq := s.timerSeq
	s.timer = time.AfterFunc(s.animation, func() { s.expire(seq) })
}

// expire ends the animation armed as seq unless a later trigger replaced it.
func (s *Store) expire(seq uint64) {
	s.mu.Lock()
	if seq != s.timerSeq {
		s.mu.Unlock()
		return
	}
	state, subs := s.applyLocked(EndAnimation{})
	s.mu.Unlock()

	s.publish(EndAnimation{}, state, subs)
}

// stopTimer must be called with s.mu held.
func (s *Store) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// AddItem adds quantity of product and triggers the animation cue.
func (s *Store) AddItem(product client.ProductDetail, quantity int) State {
	s.Dispatch(AddItem{Product: product, Quantity: quantity})
	return s.Dispatch(TriggerAnimation{})
}

// RemoveItem removes the line for productID.
func (s *Store) RemoveItem(productID int64) State {
	return s.Dispatch(RemoveItem{ProductID: productID})
}

// UpdateQuantity sets the quantity for productID.
func (s *Store) UpdateQuantity(productID int64, quantity int) State {
	return s.Dispatch(UpdateQuantity{ProductID: productID, Quantity: quantity})
}

// ClearCart empties the cart.
func (s *Store) ClearCart() State { return s.Dispatch(ClearCart{}) }

// ToggleCart flips the drawer.
func (s *Store) ToggleCart() State { return s.Dispatch(ToggleCart{}) }

// OpenCart opens the drawer.
func (s *Store) OpenCart() State { return s.Dispatch(OpenCart{}) }

// CloseCart closes the drawer.
func (s *Store) CloseCart() State { return s.Dispatch(CloseCart{}) }

// TriggerAnimation starts the one-shot animation cue.
func (s *Store) TriggerAnimation() State { return s.Dispatch(TriggerAnimation{}) }

func actionName(a Action) string {
	switch a.(type) {
	case AddItem:
		return "add_item"
	case RemoveItem:
		return "remove_item"
	case UpdateQuantity:
		return "update_quantity"
	case ClearCart:
		return "clear_cart"
	case ToggleCart:
		return "toggle_cart"
	case OpenCart:
		return "open_cart"
	case CloseCart:
		return "close_cart"
	case TriggerAnimation:
		return "trigger_animation"
	case EndAnimation:
		return "end_animation"
	default:
		return "unknown"
	}
}
