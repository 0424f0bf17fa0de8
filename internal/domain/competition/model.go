package competition

// DefaultID is the competition shown when nothing has been selected.
const DefaultID = "premier-league"

type Competition struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Country string `json:"country"`
	Season  string `json:"season"`
	Logo    string `json:"logo"`
}
