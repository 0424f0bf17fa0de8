package leaguestanding

import (
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/team"
)

// Standing represents a league table row for one team.
type Standing struct {
	Position       int       `json:"position"`
	Team           team.Team `json:"team"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goalsFor"`
	GoalsAgainst   int       `json:"goalsAgainst"`
	GoalDifference int       `json:"goalDifference"`
	Points         int       `json:"points"`
	Form           []string  `json:"form,omitempty"`
	LastUpdated    time.Time `json:"lastUpdated"`
}
