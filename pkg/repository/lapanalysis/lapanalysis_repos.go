//nolint:whitespace // can't make both editor and linter happy
package lapanalysis

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
)

const (
	DefaultHistoryLimit = 10
	topTracks           = 5
)

var selector = `select a.id, a.user_id, a.sim_type, a.track_name, a.car_name,
	a.lap_time, a.telemetry_data, a.analysis, a.created_at
	from lap_analysis a`

// Create stores the analysis and returns the new id.
// Metrics and analysis are stored as json.
func Create(
	ctx context.Context,
	conn repository.Querier,
	item *model.DbLapAnalysis,
) (int, error) {
	row := conn.QueryRow(ctx, `
	insert into lap_analysis (
		user_id, sim_type, track_name, car_name, lap_time, telemetry_data, analysis
	) values ($1,$2,$3,$4,$5,$6,$7)
	returning id
	`,
		item.UserID, item.SimType, item.TrackName, item.CarName, item.LapTime,
		item.Metrics, item.Analysis,
	)
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// LoadByID loads an analysis owned by userID.
func LoadByID(ctx context.Context, conn repository.Querier, id, userID int) (
	*model.DbLapAnalysis, error,
) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where a.id=$1 and a.user_id=$2", selector), id, userID)
	var item model.DbLapAnalysis
	if err := row.Scan(
		&item.ID, &item.UserID, &item.SimType, &item.TrackName, &item.CarName,
		&item.LapTime, &item.Metrics, &item.Analysis, &item.CreatedAt,
	); err != nil {
		return nil, repository.NoData(err)
	}
	return &item, nil
}

// LoadHistory returns the latest analyses of a user, newest first.
// A limit <= 0 uses DefaultHistoryLimit.
func LoadHistory(ctx context.Context, conn repository.Querier, userID, limit int) (
	[]*model.LapAnalysisHeader, error,
) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := conn.Query(ctx, `
	select id, sim_type, track_name, car_name, lap_time, created_at
	from lap_analysis
	where user_id=$1
	order by created_at desc, id desc
	limit $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.LapAnalysisHeader, error) {
		var item model.LapAnalysisHeader
		err := row.Scan(&item.ID, &item.SimType, &item.TrackName, &item.CarName,
			&item.LapTime, &item.CreatedAt)
		return &item, err
	})
}

// LoadStats collects the dashboard numbers of a user
func LoadStats(ctx context.Context, conn repository.Querier, userID int) (
	*model.UserStats, error,
) {
	ret := &model.UserStats{RecentTracks: []model.TrackCount{}}
	if err := conn.QueryRow(ctx,
		"select count(*) from lap_analysis where user_id=$1", userID,
	).Scan(&ret.TotalAnalyses); err != nil {
		return nil, err
	}
	if ret.TotalAnalyses == 0 {
		return ret, nil
	}

	var best model.BestLap
	if err := conn.QueryRow(ctx, `
	select track_name, car_name, lap_time from lap_analysis
	where user_id=$1
	order by lap_time asc
	limit 1
	`, userID).Scan(&best.TrackName, &best.CarName, &best.LapTime); err != nil {
		return nil, err
	}
	ret.BestLap = &best

	rows, err := conn.Query(ctx, `
	select track_name, count(*) from lap_analysis
	where user_id=$1
	group by track_name
	order by count(*) desc, track_name asc
	limit $2
	`, userID, topTracks)
	if err != nil {
		return nil, err
	}
	tracks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TrackCount, error) {
		var item model.TrackCount
		err := row.Scan(&item.TrackName, &item.Count)
		return item, err
	})
	if err != nil {
		return nil, err
	}
	ret.RecentTracks = tracks
	return ret, nil
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap_analysis where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
