// Package dialog defines the messages the save and delete dialogs send to
// the screen that owns them, and decodes them from submitted forms.
package dialog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/abgdnv/shopadmin/internal/admin/product"
)

// ErrMalformedForm is returned when a numeric form field does not parse.
var ErrMalformedForm = errors.New("malformed form")

// Kind names a dialog.
type Kind string

const (
	SaveDialog   Kind = "save"
	DeleteDialog Kind = "delete"
)

// Message is emitted by a dialog.
type Message interface {
	dialog() Kind
}

// Save is emitted when the save dialog is confirmed with the edited record.
type Save struct {
	Product product.Product
}

// Delete is emitted when the delete dialog is confirmed. The target is the
// record the screen already selected.
type Delete struct{}

// Hide is emitted when a dialog is dismissed.
type Hide struct {
	From Kind
}

func (Save) dialog() Kind { return SaveDialog }
func (Delete) dialog() Kind { return DeleteDialog }
func (h Hide) dialog() Kind { return h.From }

// Form field names shared by the template and DecodeSave.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPrice       = "price"
	FieldImage       = "image"
)

// DecodeSave builds a Save message from the save dialog form. Empty id and
// price mean zero; anything else that is not a number is ErrMalformedForm.
func DecodeSave(form url.Values) (Save, error) {
	id, err := parseInt(form, FieldID)
	if err != nil {
		return Save{}, err
	}
	price, err := parseFloat(form, FieldPrice)
	if err != nil {
		return Save{}, err
	}
	return Save{Product: product.Product{
		ID:          id,
		Title:       strings.TrimSpace(form.Get(FieldTitle)),
		Description: strings.TrimSpace(form.Get(FieldDescription)),
		Category:    strings.TrimSpace(form.Get(FieldCategory)),
		Price:       price,
		Image:       strings.TrimSpace(form.Get(FieldImage)),
	}}, nil
}

func parseInt(form url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedForm, key, raw)
	}
	return v, nil
}

func parseFloat(form url.Values, key string) (float64, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedForm, key, raw)
	}
	return v, nil
}
