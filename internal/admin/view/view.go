// Package view renders the product admin screen as HTML.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/abgdnv/shopadmin/internal/admin/dialog"
	"github.com/abgdnv/shopadmin/internal/admin/product"
	"github.com/abgdnv/shopadmin/internal/admin/screen"
)

// DefaultErrorMessage is shown when a failure carries no message.
const DefaultErrorMessage = "Something went wrong while fetching products."

// refreshSeconds is how often a loading page reloads itself.
const refreshSeconds = 1

//go:embed templates/*.html
var templatesFS embed.FS

// Page is the template model of one render.
type Page struct {
	BasePath       string
	ErrorMessage   string
	Failed         bool
	Loading        bool
	RefreshSeconds int
	Products       []product.Product
	SaveDialog     DialogModel
	DeleteDialog   DialogModel
	Fields         fieldNames
}

// DialogModel is what a dialog receives from the screen: a record and a visibility flag.
type DialogModel struct {
	Product product.Product
	Visible bool
	// Inert dialogs are rendered but cannot be interacted with.
	Inert bool
}

type fieldNames struct {
	ID, Title, Description, Category, Price, Image string
}

// NewPage maps a screen state to the template model following the render
// precedence: a failure hides everything else, loading hides the table and
// disables the dialogs, otherwise the table is shown with both dialogs.
func NewPage(basePath string, st screen.State) Page {
	page := Page{
		BasePath: basePath,
		Fields: fieldNames{
			ID:          dialog.FieldID,
			Title:       dialog.FieldTitle,
			Description: dialog.FieldDescription,
			Category:    dialog.FieldCategory,
			Price:       dialog.FieldPrice,
			Image:       dialog.FieldImage,
		},
	}
	if st.Failed() {
		page.Failed = true
		page.ErrorMessage = st.Err.Error()
		if page.ErrorMessage == "" {
			page.ErrorMessage = DefaultErrorMessage
		}
		return page
	}

	selected := product.Draft()
	if st.Selected != nil {
		selected = *st.Selected
	}
	page.SaveDialog = DialogModel{Product: selected, Visible: st.ShowSaveModal}
	page.DeleteDialog = DialogModel{Product: selected, Visible: st.ShowDeleteModal}

	if st.Loading {
		page.Loading = true
		page.RefreshSeconds = refreshSeconds
		page.SaveDialog.Inert = true
		page.DeleteDialog.Inert = true
		return page
	}
	page.Products = st.Products
	return page
}

// Renderer executes the embedded page templates.
type Renderer struct {
	basePath string
	tmpl     *template.Template
}

// NewRenderer parses the embedded templates. Form actions are rooted at basePath.
func NewRenderer(basePath string) (*Renderer, error) {
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"price": formatPrice,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{basePath: basePath, tmpl: tmpl}, nil
}

// Render writes the page for st to w.
func (r *Renderer) Render(w io.Writer, st screen.State) error {
	if err := r.tmpl.ExecuteTemplate(w, "page.html", NewPage(r.basePath, st)); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
