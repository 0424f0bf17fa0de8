package live

import (
	"context"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/usecase"
)

type FixtureService interface {
	GetLiveFixture(ctx context.Context, id string) (usecase.Result[fixture.Fixture], error)
}

// ServiceFetcher polls fixtures through the data service on its live TTL tier.
func ServiceFetcher(svc FixtureService, now func() time.Time) Fetcher {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, fixtureID string) (Record, error) {
		res, err := svc.GetLiveFixture(ctx, fixtureID)
		if err != nil {
			return Record{}, err
		}
		rec := RecordFromFixture(res.Data, now())
		if rec.FixtureID == "" {
			rec.FixtureID = fixtureID
		}
		return rec, nil
	}
}
