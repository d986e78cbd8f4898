package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const invoiceTemplateName = "invoice.html.tmpl"

// Branding printed on every invoice
const (
	DefaultBrand   = "Zantech Instant Order"
	DefaultTagline = "Professional Product Solutions"
)

// TemplateConfig customizes the rendered invoice
type TemplateConfig struct {
	Brand          string
	Tagline        string
	CurrencySymbol string       // default "$"
	Language       language.Tag // number grouping and title casing, default en-US
	DateLayout     string       // default 1/2/2006
	WidthPx        int          // document width, default 800
	Location       *time.Location
}

// TemplateEngine renders invoices with html/template
type TemplateEngine struct {
	tmpl    *template.Template
	cfg     TemplateConfig
	printer *message.Printer
}

// NewTemplateEngine parses the embedded invoice template
func NewTemplateEngine(cfg TemplateConfig) (*TemplateEngine, error) {
	if cfg.Brand == "" {
		cfg.Brand = DefaultBrand
	}
	if cfg.Tagline == "" {
		cfg.Tagline = DefaultTagline
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = "$"
	}
	if cfg.Language == language.Und {
		cfg.Language = language.AmericanEnglish
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = "1/2/2006"
	}
	if cfg.WidthPx <= 0 {
		cfg.WidthPx = 800
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	e := &TemplateEngine{
		cfg:     cfg,
		printer: message.NewPrinter(cfg.Language),
	}

	tmpl, err := template.New(invoiceTemplateName).
		Funcs(e.funcs()).
		ParseFS(templateFS, "templates/"+invoiceTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	e.tmpl = tmpl
	return e, nil
}

func (e *TemplateEngine) funcs() template.FuncMap {
	return template.FuncMap{
		"money":      e.FormatMoney,
		"formatDate": e.FormatDate,
		"percent": func(rate decimal.Decimal) string {
			return rate.Mul(decimal.NewFromInt(100)).String() + "%"
		},
	}
}

// FormatMoney renders an amount with the currency symbol, grouping and two
// decimals, e.g. $1,234.50
func (e *TemplateEngine) FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + e.cfg.CurrencySymbol + e.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// FormatDate renders the invoice date in the configured location
func (e *TemplateEngine) FormatDate(t time.Time) string {
	return t.In(e.cfg.Location).Format(e.cfg.DateLayout)
}

type invoiceView struct {
	Brand    string
	Tagline  string
	WidthPx  int
	Number   string
	Date     time.Time
	Customer invoice.Customer
	Lines    []lineView
	ShowTax  bool
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Notes    string
}

type lineView struct {
	Name      string
	Category  string
	ImageURL  template.URL
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Render produces the HTML document for inv. Single-item invoices show
// only the total; composed invoices add the subtotal and tax rows.
func (e *TemplateEngine) Render(inv invoice.Invoice, images map[uuid.UUID]*catalog.Image) (string, error) {
	view := invoiceView{
		Brand:   e.cfg.Brand,
		Tagline: e.cfg.Tagline,
		WidthPx: e.cfg.WidthPx,
	}

	switch v := inv.(type) {
	case *invoice.SingleItem:
		view.Number = v.ID
		view.Date = v.Date
		view.Customer = invoice.Customer{Name: v.CustomerName}
		view.Lines = []lineView{e.line(v.Line, images)}
		view.Total = v.Total()
	case *invoice.Composed:
		view.Number = v.ID
		view.Date = v.Date
		view.Customer = v.Customer
		view.Lines = make([]lineView, 0, len(v.Lines))
		for _, l := range v.Lines {
			view.Lines = append(view.Lines, e.line(l, images))
		}
		view.ShowTax = true
		view.Subtotal = v.Subtotal
		view.TaxRate = v.TaxRate
		view.Tax = v.Tax
		view.Total = v.Total
		view.Notes = v.Notes
	default:
		return "", fmt.Errorf("unsupported invoice type %T", inv)
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render invoice %s: %w", view.Number, err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) line(l invoice.LineItem, images map[uuid.UUID]*catalog.Image) lineView {
	v := lineView{
		Name:      l.ProductName,
		Category:  l.Category,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		LineTotal: l.LineTotal,
	}
	if _, known := catalog.CanonicalCategory(l.Category); !known {
		// Casers are stateful, one per use
		v.Category = cases.Title(e.cfg.Language).String(l.Category)
	}
	if img := images[l.ProductID]; img != nil && strings.HasPrefix(img.MIME, "image/") {
		// data URLs are otherwise rewritten to #ZgotmplZ
		v.ImageURL = template.URL(img.DataURL())
	}
	return v
}

var _ InvoiceTemplate = (*TemplateEngine)(nil)
