package team

import "fmt"

type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Team is a football club as served by the data API.
type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShortName string   `json:"shortName"`
	Logo      string   `json:"logo"`
	Colors    Colors   `json:"colors"`
	Form      []string `json:"form,omitempty"`
	Position  int      `json:"position,omitempty"`
	Founded   int      `json:"founded,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	Coach     string   `json:"coach,omitempty"`
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
