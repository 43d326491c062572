package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Product represents a catalog item owned by the search backend.
// The pipeline treats products as immutable: they are read from the
// engine, never written back during a conversation.
type Product struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	Price          float64        `json:"price"`
	Description    string         `json:"description"`
	Specifications SpecList       `json:"specifications,omitempty"`
	Features       []string       `json:"features,omitempty"`
	Reviews        *ReviewSummary `json:"reviews,omitempty"`

	// Embedding is only populated at index time in dense mode.
	Embedding []float32 `json:"embedding_vector,omitempty"`
}

// Spec is a single product attribute. Specifications keep the order
// they were authored in, so they are a slice of pairs rather than a map.
type Spec struct {
	Name  string
	Value string
}

// SpecList is an ordered sequence of product specifications.
// It serialises to a JSON object and preserves key order on decode.
type SpecList []Spec

// ReviewSummary aggregates customer review data for a product.
// Absence of reviews is represented by a nil pointer on Product.
type ReviewSummary struct {
	Rating  float64 `json:"rating"`
	Count   int     `json:"count"`
	Summary string  `json:"summary,omitempty"`
}

// Validate checks the fields the pipeline depends on.
// Products failing validation are skipped during retrieval and loading.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: missing name (id=%s)", ErrInvalidProduct, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: negative price (id=%s)", ErrInvalidProduct, p.ID)
	}
	if p.Reviews != nil {
		if p.Reviews.Rating < 0 || p.Reviews.Rating > 5 {
			return fmt.Errorf("%w: rating out of range (id=%s)", ErrInvalidProduct, p.ID)
		}
		if p.Reviews.Count < 0 {
			return fmt.Errorf("%w: negative review count (id=%s)", ErrInvalidProduct, p.ID)
		}
	}
	return nil
}

// SearchText returns the text used for embedding generation in dense mode.
func (p *Product) SearchText() string {
	return p.Name + ". " + p.Description
}

// UnmarshalJSON decodes a JSON object into an ordered spec list.
// A standard map would lose the authored key order.
func (s *SpecList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("specifications: expected object, got %v", tok)
	}

	specs := SpecList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("specifications: non-string key %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		specs = append(specs, Spec{Name: key, Value: fmt.Sprintf("%v", valTok)})
	}

	*s = specs
	return nil
}

// MarshalJSON encodes the spec list back to a JSON object in order.
func (s SpecList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, spec := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(spec.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(spec.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
