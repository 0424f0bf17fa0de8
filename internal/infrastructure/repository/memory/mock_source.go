package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"lukechampine.com/blake3"

	"github.com/riskibarqy/matchcenter/internal/domain/competition"
	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/domain/insight"
	"github.com/riskibarqy/matchcenter/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchcenter/internal/domain/matchstats"
	"github.com/riskibarqy/matchcenter/internal/domain/playerstats"
	"github.com/riskibarqy/matchcenter/internal/domain/team"
	"github.com/riskibarqy/matchcenter/internal/platform/apierr"
	"github.com/riskibarqy/matchcenter/internal/platform/resilience"
)

const (
	mockFixtureCount = 20
	fullTime         = 90
)

var errSimulatedFailure = errors.New("simulated upstream failure")

var statusWeights = []struct {
	status string
	weight float64
}{
	{fixture.StatusScheduled, 0.60},
	{fixture.StatusLive, 0.10},
	{fixture.StatusFinished, 0.25},
	{fixture.StatusPostponed, 0.05},
}

type MockSourceOptions struct {
	Seed uint64
	// Delay is waited before every call to mimic network latency.
	Delay time.Duration
	// FailureRate in [0,1] is the share of calls failing with a NetworkError.
	FailureRate float64
	Now         func() time.Time
	Sleep       resilience.Sleeper
}

// MockSource generates a reproducible season slice from a seed. Live fixtures
// advance a few minutes, sometimes with a goal, on every fixture read.
type MockSource struct {
	mu           sync.Mutex
	rng          *rand.Rand
	seed         uint64
	delay        time.Duration
	failureRate  float64
	now          func() time.Time
	sleep        resilience.Sleeper
	teams        []team.Team
	competitions []competition.Competition
	fixtures     []fixture.Fixture
}

func NewMockSource(opts MockSourceOptions) *MockSource {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = resilience.SleepContext
	}

	s := &MockSource{
		rng:          rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		seed:         opts.Seed,
		delay:        opts.Delay,
		failureRate:  opts.FailureRate,
		now:          opts.Now,
		sleep:        opts.Sleep,
		teams:        SeedTeams(),
		competitions: SeedCompetitions(),
	}
	s.fixtures = s.generateFixtures(opts.Now().UTC())
	return s
}

func (s *MockSource) generateFixtures(now time.Time) []fixture.Fixture {
	day := now.Truncate(24 * time.Hour)
	out := make([]fixture.Fixture, 0, mockFixtureCount)

	for i := 0; i < mockFixtureCount; i++ {
		home := s.teams[s.rng.IntN(len(s.teams))]
		away := s.teams[s.rng.IntN(len(s.teams))]
		for away.ID == home.ID {
			away = s.teams[s.rng.IntN(len(s.teams))]
		}

		status := s.pickStatus()
		kickoff := day.AddDate(0, 0, s.rng.IntN(14)-7).Add(time.Duration(12+s.rng.IntN(9)) * time.Hour)

		fx := fixture.Fixture{
			ID:          fmt.Sprintf("fixture-%d", i+1),
			HomeTeam:    home,
			AwayTeam:    away,
			Competition: s.competitions[0],
			DateTime:    kickoff,
			Venue:       home.Venue,
			Round:       fmt.Sprintf("Matchweek %d", 1+s.rng.IntN(38)),
			Status:      status,
		}
		switch status {
		case fixture.StatusFinished:
			fx.HomeScore = intPtr(s.rng.IntN(4))
			fx.AwayScore = intPtr(s.rng.IntN(4))
		case fixture.StatusLive:
			fx.HomeScore = intPtr(s.rng.IntN(3))
			fx.AwayScore = intPtr(s.rng.IntN(3))
			fx.Minute = intPtr(1 + s.rng.IntN(80))
		}

		fx.AIInsight = &insight.Insight{
			ID:          fmt.Sprintf("insight-%d", i+1),
			Title:       "Over 2.5 Goals",
			Description: fmt.Sprintf("Based on recent form, expect an entertaining match with %d.5+ goals.", 2+s.rng.IntN(3)),
			Confidence:  s.pickConfidence(),
			Market:      "Goals",
			Odds:        round2(2.1 + s.rng.Float64()*2),
			SupportingData: []string{
				fmt.Sprintf("%s averaging %.1f goals per game", home.ShortName, s.rng.Float64()*2+1),
				fmt.Sprintf("%s conceding %.1f goals per game", away.ShortName, s.rng.Float64()*1.5+0.5),
			},
		}
		out = append(out, fx)
	}
	return out
}

func (s *MockSource) pickStatus() string {
	r := s.rng.Float64()
	sum := 0.0
	for _, w := range statusWeights {
		sum += w.weight
		if r < sum {
			return w.status
		}
	}
	return fixture.StatusScheduled
}

func (s *MockSource) pickConfidence() string {
	switch r := s.rng.Float64(); {
	case r > 0.5:
		return insight.ConfidenceHigh
	case r > 0.2:
		return insight.ConfidenceMedium
	default:
		return insight.ConfidenceLow
	}
}

// simulate applies latency and the configured failure rate.
func (s *MockSource) simulate(ctx context.Context) error {
	if s.delay > 0 {
		if err := s.sleep(ctx, s.delay); err != nil {
			return apierr.FromContext(ctx, s.delay)
		}
	} else if ctx.Err() != nil {
		return apierr.FromContext(ctx, 0)
	}

	if s.failureRate <= 0 {
		return nil
	}
	s.mu.Lock()
	fail := s.rng.Float64() < s.failureRate
	s.mu.Unlock()
	if fail {
		return apierr.NewNetworkError(errSimulatedFailure)
	}
	return nil
}

// advanceLocked moves every live fixture forward. Callers hold s.mu.
func (s *MockSource) advanceLocked() {
	for i := range s.fixtures {
		fx := &s.fixtures[i]
		if fx.Status != fixture.StatusLive {
			continue
		}
		minute := fullTime
		if fx.Minute != nil {
			minute = *fx.Minute
		}
		minute += 1 + s.rng.IntN(3)

		if s.rng.Float64() < 0.15 {
			fx.HomeScore = intPtr(deref(fx.HomeScore) + 1)
		}
		if s.rng.Float64() < 0.12 {
			fx.AwayScore = intPtr(deref(fx.AwayScore) + 1)
		}
		if minute >= fullTime {
			minute = fullTime
			fx.Status = fixture.StatusFinished
		}
		fx.Minute = intPtr(minute)
	}
}

func (s *MockSource) Fixtures(ctx context.Context, filters fixture.Filters) ([]fixture.Fixture, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.advanceLocked()
	out := make([]fixture.Fixture, 0, len(s.fixtures))
	for _, fx := range s.fixtures {
		if filters.Matches(fx) {
			out = append(out, cloneFixture(fx))
		}
	}
	return out, nil
}

func (s *MockSource) FixtureByID(ctx context.Context, id string) (fixture.Fixture, bool, error) {
	if err := s.simulate(ctx); err != nil {
		return fixture.Fixture{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.advanceLocked()
	for _, fx := range s.fixtures {
		if fx.ID == id {
			return cloneFixture(fx), true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (s *MockSource) MatchStats(ctx context.Context, fixtureID string) (matchstats.MatchStats, error) {
	if err := s.simulate(ctx); err != nil {
		return matchstats.MatchStats{}, err
	}

	rng := s.rngFor(fixtureID)
	home := generateTeamStats(rng)
	away := generateTeamStats(rng)

	total := home.Possession + away.Possession
	home.Possession = math.Round(home.Possession / total * 100)
	away.Possession = 100 - home.Possession

	return matchstats.MatchStats{
		FixtureID:      fixtureID,
		HomeTeamStats:  home,
		AwayTeamStats:  away,
		LeagueAverages: matchstats.LeagueAverages(),
		LastUpdated:    s.now().UTC(),
	}, nil
}

func generateTeamStats(rng *rand.Rand) matchstats.TeamStats {
	between := func(lo, span int) float64 { return float64(lo + rng.IntN(span)) }
	red := 0.0
	if rng.Float64() > 0.9 {
		red = 1
	}
	return matchstats.TeamStats{
		ShotsOnTarget:    between(2, 8),
		TotalShots:       between(8, 12),
		Corners:          between(2, 8),
		Fouls:            between(8, 8),
		YellowCards:      between(0, 3),
		RedCards:         red,
		Possession:       between(30, 40),
		PassAccuracy:     between(75, 20),
		Offsides:         between(0, 4),
		PassesCompleted:  between(300, 200),
		PassesAttempted:  between(350, 250),
		CrossesCompleted: between(2, 5),
		CrossesAttempted: between(5, 8),
		TacklesWon:       between(5, 8),
		TacklesAttempted: between(8, 12),
		Interceptions:    between(3, 6),
		Saves:            between(2, 4),
		Blocks:           between(1, 3),
		Clearances:       between(5, 8),
	}
}

func (s *MockSource) Teams(ctx context.Context) ([]team.Team, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return cloneTeams(s.teams), nil
}

func (s *MockSource) TeamByID(ctx context.Context, id string) (team.Team, bool, error) {
	if err := s.simulate(ctx); err != nil {
		return team.Team{}, false, err
	}
	for _, t := range s.teams {
		if t.ID == id {
			return cloneTeam(t), true, nil
		}
	}
	return team.Team{}, false, nil
}

// LeagueTable serves the same generated table for every competition.
func (s *MockSource) LeagueTable(ctx context.Context, _ string) ([]leaguestanding.Standing, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]leaguestanding.Standing, 0, len(s.teams))
	for i, t := range s.teams {
		out = append(out, leaguestanding.Standing{
			Position:       i + 1,
			Team:           cloneTeam(t),
			Played:         38,
			Won:            25 - i*2,
			Drawn:          8,
			Lost:           5 + i*2,
			GoalsFor:       80 - i*3,
			GoalsAgainst:   25 + i*2,
			GoalDifference: 55 - i*5,
			Points:         83 - i*6,
			Form:           append([]string(nil), t.Form...),
			LastUpdated:    now,
		})
	}
	return out, nil
}

func (s *MockSource) Insights(ctx context.Context, fixtureID string) ([]insight.Insight, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return seedInsights(fixtureID), nil
}

func (s *MockSource) PlayerStats(ctx context.Context, fixtureID string) ([]playerstats.PlayerStats, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}

	rng := s.rngFor(fixtureID)
	out := make([]playerstats.PlayerStats, 0, len(seedPlayers))
	for i, p := range seedPlayers {
		side := playerstats.SideHome
		if i >= len(seedPlayers)/2 {
			side = playerstats.SideAway
		}
		out = append(out, playerstats.PlayerStats{
			ID:            fmt.Sprintf("%s-player-%d", fixtureID, i+1),
			Name:          p.name,
			Position:      p.position,
			Team:          side,
			MinutesPlayed: 45 + rng.IntN(46),
			Goals:         chance(rng, 0.2),
			Assists:       chance(rng, 0.15),
			Shots:         rng.IntN(4),
			ShotsOnTarget: rng.IntN(2),
			Passes:        20 + rng.IntN(50),
			PassAccuracy:  75 + rng.IntN(20),
			Tackles:       rng.IntN(4),
			Interceptions: rng.IntN(3),
			Fouls:         rng.IntN(3),
			YellowCards:   chance(rng, 0.1),
			Rating:        math.Round((6+rng.Float64()*3)*10) / 10,
		})
	}
	return out, nil
}

func (s *MockSource) Competitions(ctx context.Context) ([]competition.Competition, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return append([]competition.Competition(nil), s.competitions...), nil
}

// SearchTeams matches name or short name, ignoring case.
func (s *MockSource) SearchTeams(ctx context.Context, query string) ([]team.Team, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []team.Team{}, nil
	}
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}

	out := make([]team.Team, 0)
	for _, t := range s.teams {
		if strings.Contains(strings.ToLower(t.Name), term) || strings.Contains(strings.ToLower(t.ShortName), term) {
			out = append(out, cloneTeam(t))
		}
	}
	return out, nil
}

// rngFor derives a generator from the seed and key so repeated reads agree.
func (s *MockSource) rngFor(key string) *rand.Rand {
	sum := blake3.Sum256([]byte(key))
	return rand.New(rand.NewPCG(s.seed, binary.LittleEndian.Uint64(sum[:8])))
}

func chance(rng *rand.Rand, p float64) int {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func intPtr(v int) *int { return &v }

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func cloneTeam(t team.Team) team.Team {
	t.Form = append([]string(nil), t.Form...)
	return t
}

func cloneTeams(items []team.Team) []team.Team {
	out := make([]team.Team, 0, len(items))
	for _, t := range items {
		out = append(out, cloneTeam(t))
	}
	return out
}

func cloneFixture(fx fixture.Fixture) fixture.Fixture {
	fx.HomeTeam = cloneTeam(fx.HomeTeam)
	fx.AwayTeam = cloneTeam(fx.AwayTeam)
	if fx.HomeScore != nil {
		fx.HomeScore = intPtr(*fx.HomeScore)
	}
	if fx.AwayScore != nil {
		fx.AwayScore = intPtr(*fx.AwayScore)
	}
	if fx.Minute != nil {
		fx.Minute = intPtr(*fx.Minute)
	}
	if fx.AIInsight != nil {
		cp := *fx.AIInsight
		cp.SupportingData = append([]string(nil), cp.SupportingData...)
		fx.AIInsight = &cp
	}
	return fx
}
