package form

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator localizes user-facing messages
type Translator interface {
	Translate(msg string) string
}

// Identity returns messages untranslated
type Identity struct{}

// Translate implements Translator
func (Identity) Translate(msg string) string { return msg }

// deskMessages holds the shipped translations keyed by English source text
var deskMessages = map[string]map[string]string{
	"hi": {
		MsgCreatingDonationInvoice: "दान चालान बनाया जा रहा है",
		LabelGenerateInvoice:       "चालान बनाएं",
	},
	"es": {
		MsgCreatingDonationInvoice: "Creando factura de donación",
		LabelGenerateInvoice:       "Generar factura",
	},
	"fr": {
		MsgCreatingDonationInvoice: "Création de la facture de don",
		LabelGenerateInvoice:       "Générer la facture",
	},
}

// Catalog translates through an x/text message catalog for a single language
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
}

// NewCatalog builds a translator for lang. Unknown languages fall back to
// English, which leaves messages unchanged.
func NewCatalog(lang string) (*Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English}

	for code, msgs := range deskMessages {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", code, err)
		}
		for key, translated := range msgs {
			if err := builder.SetString(tag, key, translated); err != nil {
				return nil, fmt.Errorf("add %s translation: %w", code, err)
			}
		}
		tags = append(tags, tag)
	}

	tag := language.English
	if lang != "" {
		requested, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", lang, err)
		}
		_, index, _ := language.NewMatcher(tags).Match(requested)
		tag = tags[index]
	}

	return &Catalog{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}, nil
}

// Language returns the matched language tag
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// Translate implements Translator
func (c *Catalog) Translate(msg string) string {
	return c.printer.Sprintf(msg)
}
