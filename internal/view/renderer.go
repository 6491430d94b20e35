// Package view turns catalog and cart view models into HTML for the storefront containers.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rollingtrayco/storefront/internal/domain"
)

const (
	GridErrorMessage = "Could not load products. Please check API credentials and try again."
	GridEmptyMessage = "No products found."
	EmptyCartMessage = "Your cart is empty."
	CartErrorMessage = "Could not update your cart. Please try again."

	cartLinePlaceholder = "https://placehold.co/80x80/111111/FFFFFF?text=Image"
	cartLineFallback    = "Product"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Card struct {
	Handle     string
	DetailPath string
	Title      string
	Price      string
	Image      domain.Image
	VariantID  string
	InStock    bool
}

type Modal struct {
	Title        string
	Price        string
	Description  template.HTML
	MainImage    domain.Image
	Thumbnails   []domain.Image
	VariantID    string
	InStock      bool
	ModalClass   string
	ContentClass string
}

type CartLine struct {
	ID         string
	RemovePath string
	Title      string
	ImageURL   string
	Quantity   int
	Price      string
}

type CartPanel struct {
	Open            bool
	Count           int
	Lines           []CartLine
	Subtotal        string
	CheckoutEnabled bool
	Error           string
}

type Page struct {
	Title     string
	Cards     []Card
	GridError string
	GridEmpty string
	Cart      CartPanel
	Modal     *Modal
}

type Renderer struct {
	tmpl     *template.Template
	sanitize *bluemonday.Policy
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("storefront").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, sanitize: bluemonday.UGCPolicy()}, nil
}

func (r *Renderer) Page(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "Rolling Tray Co."
	}
	return r.tmpl.ExecuteTemplate(w, "page", p)
}

func (r *Renderer) ProductGrid(w io.Writer, products []domain.Product) error {
	if len(products) == 0 {
		return r.tmpl.ExecuteTemplate(w, "grid_empty", GridEmptyMessage)
	}
	return r.tmpl.ExecuteTemplate(w, "grid", Cards(products))
}

func (r *Renderer) GridError(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "grid_error", GridErrorMessage)
}

func (r *Renderer) ProductModal(w io.Writer, p *domain.Product) error {
	m := r.ModalFor(p, true)
	return r.tmpl.ExecuteTemplate(w, "modal", m)
}

func (r *Renderer) CartPanel(w io.Writer, c *domain.Cart, open bool) error {
	return r.Panel(w, CartPanelFor(c, open))
}

// Panel renders an already built cart panel, e.g. one carrying an error message.
func (r *Renderer) Panel(w io.Writer, p CartPanel) error {
	return r.tmpl.ExecuteTemplate(w, "cart", p)
}

// Cards maps products to grid cards. Products without a variant never reach here; the
// loader drops them.
func Cards(products []domain.Product) []Card {
	cards := make([]Card, 0, len(products))
	for i := range products {
		p := &products[i]
		cards = append(cards, Card{
			Handle:     p.Handle,
			DetailPath: "/?product=" + url.QueryEscape(p.Handle),
			Title:      p.Title,
			Price:      FormatPrice(p.Price),
			Image:      p.PrimaryImage(),
			VariantID:  p.Variant.ID,
			InStock:    p.InStock(),
		})
	}
	return cards
}

// ModalFor builds the detail view. Thumbnails are only listed when there is more than one image.
func (r *Renderer) ModalFor(p *domain.Product, open bool) *Modal {
	m := &Modal{
		Title:        p.Title,
		Price:        FormatPrice(p.Price),
		Description:  template.HTML(r.sanitize.Sanitize(p.DescriptionHTML)),
		MainImage:    p.PrimaryImage(),
		VariantID:    p.Variant.ID,
		InStock:      p.InStock(),
		ModalClass:   "fixed inset-0 hidden opacity-0",
		ContentClass: "scale-95",
	}
	if open {
		m.ModalClass = "fixed inset-0"
		m.ContentClass = ""
	}
	if len(p.Images) > 1 {
		m.Thumbnails = p.Images
	}
	return m
}

func CartPanelFor(c *domain.Cart, open bool) CartPanel {
	panel := CartPanel{
		Open:            open,
		Count:           CartBadge(c),
		CheckoutEnabled: CheckoutEnabled(c),
		Subtotal:        FormatPrice(domain.Money{}),
	}
	if c == nil {
		return panel
	}

	panel.Subtotal = FormatPrice(c.Subtotal)
	for _, l := range c.Lines {
		line := CartLine{
			ID:         l.ID,
			RemovePath: "/cart/lines/" + url.PathEscape(l.ID) + "/remove",
			Title:      l.Merchandise.ProductTitle,
			ImageURL:   l.Merchandise.ImageURL,
			Quantity:   l.Quantity,
			Price:      FormatPrice(l.Merchandise.UnitPrice),
		}
		if line.Title == "" {
			line.Title = cartLineFallback
		}
		if line.ImageURL == "" {
			line.ImageURL = cartLinePlaceholder
		}
		panel.Lines = append(panel.Lines, line)
	}
	return panel
}
