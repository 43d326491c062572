package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// NoContextSentinel is the fixed grounding block produced when nothing
// matched. The generator treats it as the signal to decline rather
// than invent products.
const NoContextSentinel = "No relevant products found in the database."

// maxSpecsPerProduct bounds how many specification pairs are emitted
// per product; extras are silently omitted.
const maxSpecsPerProduct = 5

// maxFeaturesPerProduct bounds the feature list emitted per product.
const maxFeaturesPerProduct = 5

// ContextAssembler formats retrieved products into the bounded textual
// grounding block supplied to the generator. Assembly is deterministic:
// the same retrieval result always produces identical text.
type ContextAssembler struct {
	maxDocs int
}

// NewContextAssembler creates an assembler emitting at most maxDocs
// product blocks.
func NewContextAssembler(maxDocs int) *ContextAssembler {
	if maxDocs <= 0 {
		maxDocs = 3
	}
	return &ContextAssembler{maxDocs: maxDocs}
}

// Assemble renders the retrieval result in document order.
func (a *ContextAssembler) Assemble(result *domain.RetrievalResult) string {
	if result.Empty() {
		return NoContextSentinel
	}

	results := result.Results
	if len(results) > a.maxDocs {
		results = results[:a.maxDocs]
	}

	var b strings.Builder
	for i, rp := range results {
		p := rp.Product
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Product %d:\n", i+1)
		fmt.Fprintf(&b, "- Name: %s\n", p.Name)
		fmt.Fprintf(&b, "- Category: %s\n", p.Category)
		fmt.Fprintf(&b, "- Price: %s\n", FormatPrice(p.Price))
		fmt.Fprintf(&b, "- Description: %s\n", p.Description)

		if len(p.Specifications) > 0 {
			b.WriteString("- Key Specs:\n")
			specs := p.Specifications
			if len(specs) > maxSpecsPerProduct {
				specs = specs[:maxSpecsPerProduct]
			}
			for _, spec := range specs {
				fmt.Fprintf(&b, "  - %s: %s\n", spec.Name, spec.Value)
			}
		}

		if len(p.Features) > 0 {
			features := p.Features
			if len(features) > maxFeaturesPerProduct {
				features = features[:maxFeaturesPerProduct]
			}
			fmt.Fprintf(&b, "- Features: %s\n", strings.Join(features, ", "))
		}

		if p.Reviews != nil {
			fmt.Fprintf(&b, "- Rating: %.1f/5.0 (%d reviews)\n", p.Reviews.Rating, p.Reviews.Count)
			if p.Reviews.Summary != "" {
				fmt.Fprintf(&b, "- Review Summary: %s\n", p.Reviews.Summary)
			}
		}
	}
	return b.String()
}

// FormatPrice renders a non-negative price with a currency marker, two
// decimal places and thousands separators, e.g. 1899 -> "$1,899.00".
func FormatPrice(price float64) string {
	s := fmt.Sprintf("%.2f", price)

	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	if len(whole) > 3 {
		var b strings.Builder
		lead := len(whole) % 3
		if lead > 0 {
			b.WriteString(whole[:lead])
		}
		for i := lead; i < len(whole); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(whole[i : i+3])
		}
		whole = b.String()
	}
	return "$" + whole + frac
}
