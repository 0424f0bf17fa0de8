package live

import (
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
)

// Record is the latest polled state of one fixture.
type Record struct {
	FixtureID   string    `json:"fixtureId"`
	HomeScore   *int      `json:"homeScore,omitempty"`
	AwayScore   *int      `json:"awayScore,omitempty"`
	Status      string    `json:"status"`
	Minute      *int      `json:"minute,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func RecordFromFixture(f fixture.Fixture, now time.Time) Record {
	return Record{
		FixtureID:   f.ID,
		HomeScore:   copyInt(f.HomeScore),
		AwayScore:   copyInt(f.AwayScore),
		Status:      f.Status,
		Minute:      copyInt(f.Minute),
		LastUpdated: now.UTC(),
	}
}

// Apply overlays the live score and status onto f. The rest of the fixture is kept.
func (r Record) Apply(f fixture.Fixture) fixture.Fixture {
	if r.FixtureID != f.ID {
		return f
	}
	if r.HomeScore != nil {
		f.HomeScore = copyInt(r.HomeScore)
	}
	if r.AwayScore != nil {
		f.AwayScore = copyInt(r.AwayScore)
	}
	if r.Status != "" {
		f.Status = r.Status
	}
	f.Minute = copyInt(r.Minute)
	return f
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
