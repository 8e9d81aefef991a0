// Package provider implements the upstream job board adapters. Adapters never
// return errors: any failure is logged and surfaces as an empty result.
package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// DefaultQuery is used when the caller supplies no search term.
const DefaultQuery = "developer"

// DefaultUserAgent identifies this service to upstream providers.
const DefaultUserAgent = "KaamKhoj/1.0"

// flexibleID accepts a JSON string or number. Providers are inconsistent.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// placeholderID builds a locally unique ID for records the provider sent
// without one.
func placeholderID(source string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", source, now.UnixMilli(), uuid.NewString()[:8])
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// StripHTML removes markup and collapses whitespace runs into single spaces.
// Script and style bodies are dropped. Descriptions that arrive with their
// markup entity-escaped get a second pass so no tags leak into the text.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	text := htmlText(s)
	if strings.Contains(text, "<") {
		text = htmlText(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

// mustSchema compiles a static JSON schema.
func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("provider: invalid schema: %v", err))
	}
	return schema
}

// conform validates doc against schema and folds the violations into one error.
func conform(schema *gojsonschema.Schema, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
}

// currencySymbols maps Adzuna country codes to the symbol used in salary strings.
var currencySymbols = map[string]string{
	"in": "₹",
	"gb": "£",
	"us": "$",
	"ca": "$",
	"au": "$",
	"nz": "$",
	"sg": "$",
	"fr": "€",
	"de": "€",
	"nl": "€",
	"it": "€",
	"es": "€",
	"at": "€",
	"be": "€",
}

func formatAmount(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.2f", v), ".00")
}

// formatSalary returns nil unless both bounds are present.
func formatSalary(country string, min, max float64) *string {
	if min == 0 || max == 0 {
		return nil
	}
	sym := currencySymbols[strings.ToLower(country)]
	s := fmt.Sprintf("%s%s - %s%s", sym, formatAmount(min), sym, formatAmount(max))
	return &s
}
