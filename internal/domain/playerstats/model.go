package playerstats

const (
	SideHome = "home"
	SideAway = "away"
)

// PlayerStats is one player's line for a single fixture.
type PlayerStats struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	Team          string  `json:"team"`
	MinutesPlayed int     `json:"minutesPlayed"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	Shots         int     `json:"shots"`
	ShotsOnTarget int     `json:"shotsOnTarget"`
	Passes        int     `json:"passes"`
	PassAccuracy  int     `json:"passAccuracy"`
	Tackles       int     `json:"tackles"`
	Interceptions int     `json:"interceptions"`
	Fouls         int     `json:"fouls"`
	YellowCards   int     `json:"yellowCards"`
	RedCards      int     `json:"redCards"`
	Rating        float64 `json:"rating"`
}
