// Package cart holds the shopping cart as a pure reducer over tagged
// actions, plus a Store that dispatches actions and drives the add-to-cart
// animation cue.
package cart

import (
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/money"
)

// Item is one cart line. UnitPrice is in minor units, parsed once when the
// product was first added.
type Item struct {
	Product   client.ProductDetail `json:"product"`
	Quantity  int                  `json:"quantity"`
	UnitPrice int64                `json:"unitPrice"`
}

// Subtotal returns UnitPrice times Quantity.
func (i Item) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// State is the cart state. TotalItems and TotalAmount are derived from
// Items by every item mutation and are never set on their own.
type State struct {
	Items       []Item `json:"items"`
	IsOpen      bool   `json:"isOpen"`
	TotalItems  int    `json:"totalItems"`
	TotalAmount int64  `json:"totalAmount"`
	IsAnimating bool   `json:"isAnimating"`
}

// Find returns the line for productID.
func (s State) Find(productID int64) (Item, bool) {
	for _, item := range s.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return Item{}, false
}

// Action is a cart transition. The concrete types below are the only
// implementations.
type Action interface {
	isAction()
}

type (
	// AddItem adds Quantity of Product; zero or negative quantities add one.
	AddItem struct {
		Product  client.ProductDetail
		Quantity int
	}

	// RemoveItem drops the line for ProductID.
	RemoveItem struct {
		ProductID int64
	}

	// UpdateQuantity sets the quantity of a line; values <= 0 remove it.
	UpdateQuantity struct {
		ProductID int64
		Quantity  int
	}

	ClearCart        struct{}
	ToggleCart       struct{}
	OpenCart         struct{}
	CloseCart        struct{}
	TriggerAnimation struct{}
	EndAnimation     struct{}
)

func (AddItem) isAction()          {}
func (RemoveItem) isAction()       {}
func (UpdateQuantity) isAction()   {}
func (ClearCart) isAction()        {}
func (ToggleCart) isAction()       {}
func (OpenCart) isAction()         {}
func (CloseCart) isAction()        {}
func (TriggerAnimation) isAction() {}
func (EndAnimation) isAction()     {}

// Reduce returns the state after applying action to state. It never
// modifies state or its Items slice.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		items := cloneItems(state.Items)
		found := false
		for i := range items {
			if items[i].Product.ID == a.Product.ID {
				items[i].Quantity += qty
				found = true
				break
			}
		}
		if !found {
			items = append(items, Item{
				Product:   a.Product,
				Quantity:  qty,
				UnitPrice: money.ParseMinorUnits(a.Product.Price),
			})
		}
		return withItems(state, items)

	case RemoveItem:
		items := make([]Item, 0, len(state.Items))
		for _, item := range state.Items {
			if item.Product.ID != a.ProductID {
				items = append(items, item)
			}
		}
		return withItems(state, items)

	case UpdateQuantity:
		if a.Quantity <= 0 {
			return Reduce(state, RemoveItem{ProductID: a.ProductID})
		}
		items := cloneItems(state.Items)
		for i := range items {
			if items[i].Product.ID == a.ProductID {
				items[i].Quantity = a.Quantity
			}
		}
		return withItems(state, items)

	case ClearCart:
		return withItems(state, nil)

	case ToggleCart:
		state.IsOpen = !state.IsOpen
	case OpenCart:
		state.IsOpen = true
	case CloseCart:
		state.IsOpen = false
	case TriggerAnimation:
		state.IsAnimating = true
	case EndAnimation:
		state.IsAnimating = false
	}
	return state
}

func cloneItems(items []Item) []Item {
	return append([]Item(nil), items...)
}

// withItems replaces the items and recomputes both totals from scratch.
func withItems(state State, items []Item) State {
	state.Items = items
	state.TotalItems = 0
	state.TotalAmount = 0
	for _, item := range items {
		state.TotalItems += item.Quantity
		state.TotalAmount += item.Subtotal()
	}
	return state
}
