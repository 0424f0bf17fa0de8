package fixture

import (
	"strings"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
)

const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusPostponed = "postponed"
)

// Fixture represents one match between two teams.
type Fixture struct {
	ID          string                  `json:"id"`
	HomeTeam    team.Team               `json:"homeTeam"`
	AwayTeam    team.Team               `json:"awayTeam"`
	Competition competition.Competition `json:"competition"`
	DateTime    time.Time               `json:"dateTime"`
	Venue       string                  `json:"venue,omitempty"`
	Round       string                  `json:"round,omitempty"`
	Status      string                  `json:"status"`
	HomeScore   *int                    `json:"homeScore,omitempty"`
	AwayScore   *int                    `json:"awayScore,omitempty"`
	Minute      *int                    `json:"minute,omitempty"`
	AIInsight   *insight.Insight        `json:"aiInsight,omitempty"`
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "in_play", "ht", "1h", "2h", "et":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "ft", "aet", "pen":
		return true
	default:
		return false
	}
}

func (f Fixture) IsLive() bool {
	return IsLiveStatus(f.Status)
}

// Involves reports whether teamID plays in the fixture.
func (f Fixture) Involves(teamID string) bool {
	return f.HomeTeam.ID == teamID || f.AwayTeam.ID == teamID
}
