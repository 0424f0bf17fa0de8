package matchstats

import "time"

// TeamStats holds per-side numbers. Values are floats so league averages fit the same shape.
type TeamStats struct {
	ShotsOnTarget    float64 `json:"shotsOnTarget"`
	TotalShots       float64 `json:"totalShots"`
	Corners          float64 `json:"corners"`
	Fouls            float64 `json:"fouls"`
	YellowCards      float64 `json:"yellowCards"`
	RedCards         float64 `json:"redCards"`
	Possession       float64 `json:"possession"`
	PassAccuracy     float64 `json:"passAccuracy"`
	Offsides         float64 `json:"offsides"`
	PassesCompleted  float64 `json:"passesCompleted"`
	PassesAttempted  float64 `json:"passesAttempted"`
	CrossesCompleted float64 `json:"crossesCompleted"`
	CrossesAttempted float64 `json:"crossesAttempted"`
	TacklesWon       float64 `json:"tacklesWon"`
	TacklesAttempted float64 `json:"tacklesAttempted"`
	Interceptions    float64 `json:"interceptions"`
	Saves            float64 `json:"saves"`
	Blocks           float64 `json:"blocks"`
	Clearances       float64 `json:"clearances"`
}

type MatchStats struct {
	FixtureID      string    `json:"fixtureId"`
	HomeTeamStats  TeamStats `json:"homeTeamStats"`
	AwayTeamStats  TeamStats `json:"awayTeamStats"`
	LeagueAverages TeamStats `json:"leagueAverages"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// LeagueAverages is the reference line shown next to both sides.
func LeagueAverages() TeamStats {
	return TeamStats{
		ShotsOnTarget:    5.2,
		TotalShots:       13.1,
		Corners:          5.8,
		Fouls:            11.4,
		YellowCards:      2.1,
		RedCards:         0.1,
		Possession:       50,
		PassAccuracy:     82.5,
		Offsides:         2.3,
		PassesCompleted:  450,
		PassesAttempted:  520,
		CrossesCompleted: 3.5,
		CrossesAttempted: 8.2,
		TacklesWon:       7.8,
		TacklesAttempted: 12.3,
		Interceptions:    4.6,
		Saves:            3.2,
		Blocks:           1.8,
		Clearances:       7.5,
	}
}
