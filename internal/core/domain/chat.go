package domain

// ChatResponse is the outcome of one completed conversation turn.
type ChatResponse struct {
	Answer     string           `json:"answer"`
	Validation ValidationReport `json:"validation,omitempty"`
	Context    string           `json:"context,omitempty"`
	Retrieved  *RetrievalResult `json:"retrieved,omitempty"`
}
