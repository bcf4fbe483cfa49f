package catalog

import "strings"

// Column names of the semicolon-delimited table export. The file is
// produced by an external site builder, so the header is part of the
// on-disk contract and is preserved as-is.
const (
	ColID             = "Tilda UID"
	ColBrand          = "Brand"
	ColSKU            = "SKU"
	ColMark           = "Mark"
	ColCategory       = "Category"
	ColTitle          = "Title"
	ColDescription    = "Description"
	ColText           = "Text"
	ColPhoto          = "Photo"
	ColApplication    = "Characteristics:Применение"
	ColAnalogs        = "Characteristics:Аналоги"
	ColMaterial       = "Characteristics:Материал"
	ColDiameterLength = "Characteristics:d / l"
	ColDrive          = "Characteristics:Привод"
	ColThreadDiameter = "Characteristics:Диаметр резьбы"
	ColBracketLength  = "Characteristics:L1 (длина кронштейна)"
	ColWeight         = "Weight"
	ColLength         = "Length"
	ColWidth          = "Width"
	ColHeight         = "Height"
)

// defaultColumns is the header written when a table file is created
// from scratch. It mirrors the full export column set so that files we
// create stay loadable by the exporter's own tooling.
var defaultColumns = []string{
	ColID, ColBrand, ColSKU, ColMark, ColCategory, ColTitle,
	ColDescription, ColText, ColPhoto,
	"Price", "Quantity", "Price Old", "Editions", "Modifications",
	"External ID", "Parent UID",
	ColApplication, ColAnalogs, ColMaterial, ColDiameterLength,
	"Characteristics:lt", "Characteristics:s", "Characteristics:k",
	ColDrive, "Characteristics:dk", "Characteristics:lb",
	"Characteristics:XX", "Characteristics:1",
	ColThreadDiameter, ColBracketLength,
	ColWeight, ColLength, ColWidth, ColHeight,
	"SEO title", "SEO descr", "SEO keywords", "FB title", "FB descr",
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Brand       string `json:"brand"`
	SKU         string `json:"sku"`

	Material    string `json:"material"`
	Application string `json:"application"`
	Standard    string `json:"standard"`

	Analogs        string `json:"analogs,omitempty"`
	Weight         string `json:"weight,omitempty"`
	Length         string `json:"length,omitempty"`
	Width          string `json:"width,omitempty"`
	Height         string `json:"height,omitempty"`
	DiameterLength string `json:"diameter_length,omitempty"`
	Drive          string `json:"drive,omitempty"`
	ThreadDiameter string `json:"thread_diameter,omitempty"`
	BracketLength  string `json:"bracket_length,omitempty"`
}

// productFromRow maps one table row onto a Product. Returns false when
// the row has no title and must be skipped.
func productFromRow(row func(string) string) (Product, bool) {
	name := strings.TrimSpace(row(ColTitle))
	if name == "" {
		return Product{}, false
	}

	category := strings.TrimSpace(row(ColCategory))
	if i := strings.Index(category, ";"); i >= 0 {
		category = strings.TrimSpace(category[:i])
	}

	desc := strings.TrimSpace(row(ColDescription))
	if desc == "" {
		desc = strings.TrimSpace(row(ColText))
	}

	return Product{
		ID:          strings.TrimSpace(row(ColID)),
		Name:        name,
		Description: desc,
		Category:    category,
		Image:       row(ColPhoto),
		Brand:       strings.TrimSpace(row(ColBrand)),
		SKU:         strings.TrimSpace(row(ColSKU)),

		Material:    strings.TrimSpace(row(ColMaterial)),
		Application: strings.TrimSpace(row(ColApplication)),
		Standard:    strings.TrimSpace(row(ColMark)),

		Analogs:        strings.TrimSpace(row(ColAnalogs)),
		Weight:         strings.TrimSpace(row(ColWeight)),
		Length:         strings.TrimSpace(row(ColLength)),
		Width:          strings.TrimSpace(row(ColWidth)),
		Height:         strings.TrimSpace(row(ColHeight)),
		DiameterLength: strings.TrimSpace(row(ColDiameterLength)),
		Drive:          strings.TrimSpace(row(ColDrive)),
		ThreadDiameter: strings.TrimSpace(row(ColThreadDiameter)),
		BracketLength:  strings.TrimSpace(row(ColBracketLength)),
	}, true
}
