package screen

import (
	"slices"

	"github.com/abgdnv/shopadmin/internal/admin/product"
)

// State is one immutable snapshot of the screen. Transitions never modify a
// State in place; they build the next one.
type State struct {
	Products []product.Product
	// Loading is true while a create, update or delete call is outstanding.
	Loading bool
	// Err is the data-access failure that ended the screen, if any.
	Err error
	// Selected is the target of the edit or delete in progress.
	Selected        *product.Product
	ShowSaveModal   bool
	ShowDeleteModal bool
}

// Failed reports whether a data-access failure ended the screen.
func (s State) Failed() bool {
	return s.Err != nil
}

// clone copies the slices and pointers so the snapshot can be handed out.
func (s State) clone() State {
	s.Products = slices.Clone(s.Products)
	if s.Selected != nil {
		selected := *s.Selected
		s.Selected = &selected
	}
	return s
}

// action is one input to reduce.
type action interface {
	name() string
}

type (
	openSave       struct{ product product.Product }
	openDelete     struct{ product product.Product }
	closeSave      struct{}
	closeDelete    struct{}
	deleteStarted  struct{}
	saveStarted    struct{}
	productDeleted struct{ id int64 }
	productUpdated struct{ product product.Product }
	productCreated struct{ product product.Product }
	callFailed     struct{ err error }
	callSettled    struct{}
)

func (openSave) name() string { return "open_save" }
func (openDelete) name() string { return "open_delete" }
func (closeSave) name() string { return "close_save" }
func (closeDelete) name() string { return "close_delete" }
func (deleteStarted) name() string { return "delete_started" }
func (saveStarted) name() string { return "save_started" }
func (productDeleted) name() string { return "deleted" }
func (productUpdated) name() string { return "updated" }
func (productCreated) name() string { return "created" }
func (callFailed) name() string { return "failed" }
func (callSettled) name() string { return "settled" }

// reduce returns the state that follows s after a.
func reduce(s State, a action) State {
	next := s.clone()
	switch a := a.(type) {
	case openSave:
		p := a.product
		next.Selected = &p
		next.ShowSaveModal = true
	case openDelete:
		p := a.product
		next.Selected = &p
		next.ShowDeleteModal = true
	case closeSave:
		next.ShowSaveModal = false
	case closeDelete:
		next.ShowDeleteModal = false
	case deleteStarted:
		next.ShowDeleteModal = false
		next.Loading = true
	case saveStarted:
		next.ShowSaveModal = false
		next.Loading = true
	case productDeleted:
		next.Products = slices.DeleteFunc(next.Products, func(p product.Product) bool {
			return p.ID == a.id
		})
	case productUpdated:
		for i := range next.Products {
			if next.Products[i].ID == a.product.ID {
				next.Products[i] = a.product
			}
		}
	case productCreated:
		next.Products = append(next.Products, a.product)
	case callFailed:
		next.Err = a.err
	case callSettled:
		next.Loading = false
	}
	return next
}
