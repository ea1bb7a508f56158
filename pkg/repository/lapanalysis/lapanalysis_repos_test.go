//nolint:funlen,errcheck //ok for this test code
package lapanalysis

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
	base "github.com/mpapenbr/simlap-service-go/testsupport/basedata"
	"github.com/mpapenbr/simlap-service-go/testsupport/testdb"
)

func TestCreateAndLoad(t *testing.T) {
	pool := testdb.InitTestDb(t)
	u, id := base.CreateSampleLapAnalysis(pool)
	ctx := context.Background()

	got, err := LoadByID(ctx, pool, id, u.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.ID, id)
	assert.Equal(t, got.UserID, u.ID)
	assert.Equal(t, got.TrackName, "Spa-Francorchamps")

	// metrics and analysis survive the json roundtrip
	if diff := cmp.Diff(*base.SampleMetrics(), got.Metrics); diff != "" {
		t.Errorf("metrics differ on reload: %s", diff)
	}
	if diff := cmp.Diff(*base.SampleAnalysis(), got.Analysis); diff != "" {
		t.Errorf("analysis differs on reload: %s", diff)
	}
}

func TestLoadByIDOtherUser(t *testing.T) {
	pool := testdb.InitTestDb(t)
	u, id := base.CreateSampleLapAnalysis(pool)

	_, err := LoadByID(context.Background(), pool, id, u.ID+1)
	assert.Assert(t, errors.Is(err, repository.ErrNoData))
	_, err = LoadByID(context.Background(), pool, id+1000, u.ID)
	assert.Assert(t, errors.Is(err, repository.ErrNoData))
}

func TestLoadHistory(t *testing.T) {
	pool := testdb.InitTestDb(t)
	u := base.CreateSampleUser(pool)
	ctx := context.Background()

	ids := make([]int, 0)
	for i := 0; i < 12; i++ {
		item := base.SampleLapAnalysis(u.ID)
		item.LapTime = 130 + float64(i)
		id, err := Create(ctx, pool, item)
		assert.NilError(t, err)
		ids = append(ids, id)
	}

	got, err := LoadHistory(ctx, pool, u.ID, 0)
	assert.NilError(t, err)
	assert.Equal(t, len(got), DefaultHistoryLimit)
	// newest first
	assert.Equal(t, got[0].ID, ids[len(ids)-1])

	got, err = LoadHistory(ctx, pool, u.ID, 3)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 3)

	got, err = LoadHistory(ctx, pool, u.ID+1, 5)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 0)
}

func TestLoadStats(t *testing.T) {
	pool := testdb.InitTestDb(t)
	u := base.CreateSampleUser(pool)
	ctx := context.Background()

	empty, err := LoadStats(ctx, pool, u.ID)
	assert.NilError(t, err)
	assert.Equal(t, empty.TotalAnalyses, 0)
	assert.Assert(t, empty.BestLap == nil)
	assert.Equal(t, len(empty.RecentTracks), 0)

	laps := []struct {
		track   string
		lapTime float64
	}{
		{"Spa", 140}, {"Spa", 138.2}, {"Monza", 110.5}, {"Spa", 139},
		{"Monza", 111}, {"Imola", 100.1}, {"Nurburgring", 120},
		{"Suzuka", 125}, {"Zandvoort", 95},
	}
	for _, l := range laps {
		item := base.SampleLapAnalysis(u.ID)
		item.TrackName = l.track
		item.LapTime = l.lapTime
		_, err := Create(ctx, pool, item)
		assert.NilError(t, err)
	}

	got, err := LoadStats(ctx, pool, u.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.TotalAnalyses, len(laps))
	assert.DeepEqual(t, got.BestLap,
		&model.BestLap{TrackName: "Zandvoort", CarName: "GT3", LapTime: 95})
	assert.Equal(t, len(got.RecentTracks), 5)
	assert.DeepEqual(t, got.RecentTracks[:2], []model.TrackCount{
		{TrackName: "Spa", Count: 3},
		{TrackName: "Monza", Count: 2},
	})
}
