package insight

import "strings"

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Insight is a model-generated betting angle for one fixture.
type Insight struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Confidence     string   `json:"confidence"`
	Market         string   `json:"market"`
	Odds           float64  `json:"odds"`
	SupportingData []string `json:"supportingData"`
}

// Mentions reports whether any supporting line contains term, ignoring case.
func (i Insight) Mentions(term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, line := range i.SupportingData {
		if strings.Contains(strings.ToLower(line), needle) {
			return true
		}
	}
	return false
}
