package memory

import (
	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{
			ID: "arsenal", Name: "Arsenal", ShortName: "ARS", Logo: "/logos/arsenal.png",
			Colors: team.Colors{Primary: "#EF0107", Secondary: "#FFFFFF"},
			Form:   []string{"W", "W", "D", "W", "L"}, Position: 2, Founded: 1886,
			Venue: "Emirates Stadium", Coach: "Mikel Arteta",
		},
		{
			ID: "manchester-city", Name: "Manchester City", ShortName: "MCI", Logo: "/logos/man-city.png",
			Colors: team.Colors{Primary: "#6CABDD", Secondary: "#FFFFFF"},
			Form:   []string{"W", "W", "W", "W", "W"}, Position: 1, Founded: 1880,
			Venue: "Etihad Stadium", Coach: "Pep Guardiola",
		},
		{
			ID: "liverpool", Name: "Liverpool", ShortName: "LIV", Logo: "/logos/liverpool.png",
			Colors: team.Colors{Primary: "#C8102E", Secondary: "#FFFFFF"},
			Form:   []string{"W", "W", "L", "W", "W"}, Position: 3, Founded: 1892,
			Venue: "Anfield", Coach: "Arne Slot",
		},
		{
			ID: "chelsea", Name: "Chelsea", ShortName: "CHE", Logo: "/logos/chelsea.png",
			Colors: team.Colors{Primary: "#034694", Secondary: "#FFFFFF"},
			Form:   []string{"D", "W", "L", "D", "W"}, Position: 4, Founded: 1905,
			Venue: "Stamford Bridge", Coach: "Enzo Maresca",
		},
		{
			ID: "manchester-united", Name: "Manchester United", ShortName: "MUN", Logo: "/logos/man-utd.png",
			Colors: team.Colors{Primary: "#DA020E", Secondary: "#FFFFFF"},
			Form:   []string{"L", "W", "D", "L", "W"}, Position: 5, Founded: 1878,
			Venue: "Old Trafford", Coach: "Ruben Amorim",
		},
		{
			ID: "tottenham", Name: "Tottenham Hotspur", ShortName: "TOT", Logo: "/logos/tottenham.png",
			Colors: team.Colors{Primary: "#132257", Secondary: "#FFFFFF"},
			Form:   []string{"W", "D", "W", "L", "D"}, Position: 6, Founded: 1882,
			Venue: "Tottenham Hotspur Stadium", Coach: "Thomas Frank",
		},
	}
}

func SeedCompetitions() []competition.Competition {
	return []competition.Competition{
		{ID: competition.DefaultID, Name: "Premier League", Code: "PL", Country: "England", Season: "2025-26", Logo: "/logos/premier-league.png"},
		{ID: "champions-league", Name: "UEFA Champions League", Code: "CL", Country: "Europe", Season: "2025-26", Logo: "/logos/champions-league.png"},
		{ID: "fa-cup", Name: "FA Cup", Code: "FAC", Country: "England", Season: "2025-26", Logo: "/logos/fa-cup.png"},
	}
}

func seedInsights(fixtureID string) []insight.Insight {
	return []insight.Insight{
		{
			ID:          fixtureID + "-insight-1",
			Title:       "Over 2.5 Goals",
			Description: "Both teams have strong attacking records and leaky defenses. Expect an open, high-scoring encounter.",
			Confidence:  insight.ConfidenceHigh,
			Market:      "Goals",
			Odds:        1.85,
			SupportingData: []string{
				"Home team averaging 2.3 goals per game",
				"Away team conceding 1.8 goals per game",
				"Last 5 meetings produced 3.2 goals per game",
			},
		},
		{
			ID:          fixtureID + "-insight-2",
			Title:       "Both Teams to Score",
			Description: "Both sides have reliable goal-scorers and have found the net in recent matches.",
			Confidence:  insight.ConfidenceMedium,
			Market:      "Both Teams to Score",
			Odds:        1.65,
			SupportingData: []string{
				"Home team scored in 8/10 last games",
				"Away team scored in 7/10 last games",
				"Both teams scored in 4/5 recent H2H meetings",
			},
		},
		{
			ID:          fixtureID + "-insight-3",
			Title:       "Over 9.5 Corners",
			Description: "Expect plenty of attacking play down the flanks leading to corner opportunities.",
			Confidence:  insight.ConfidenceMedium,
			Market:      "Corners",
			Odds:        1.90,
			SupportingData: []string{
				"Home team averaging 6.2 corners per game",
				"Away team averaging 5.8 corners per game",
				"Both teams prefer wide attacking play",
			},
		},
		{
			ID:          fixtureID + "-insight-4",
			Title:       "Home Team -1 Handicap",
			Description: "Home advantage and superior form make them strong favorites.",
			Confidence:  insight.ConfidenceLow,
			Market:      "Handicap",
			Odds:        2.45,
			SupportingData: []string{
				"Home team won last 4 home games",
				"Away team lost 3/5 recent away games",
				"Home team has better squad depth",
			},
		},
	}
}

var seedPlayers = []struct {
	name     string
	position string
}{
	{"John Smith", "GK"},
	{"Mike Johnson", "DF"},
	{"David Wilson", "DF"},
	{"Chris Brown", "MF"},
	{"James Davis", "MF"},
	{"Robert Miller", "MF"},
	{"William Garcia", "FW"},
	{"Thomas Anderson", "FW"},
}
