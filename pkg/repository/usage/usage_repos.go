//nolint:whitespace // can't make both editor and linter happy
package usage

import (
	"context"
	"errors"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
)

// Load returns the usage of the given month. A month without any analysis
// yields a zero count.
func Load(ctx context.Context, conn repository.Querier, userID int, month string) (
	*model.DbUsage, error,
) {
	ret := &model.DbUsage{UserID: userID, Month: month}
	row := conn.QueryRow(ctx,
		"select analyses_count from usage_stats where user_id=$1 and month=$2",
		userID, month)
	if err := row.Scan(&ret.AnalysesCount); err != nil {
		if errors.Is(repository.NoData(err), repository.ErrNoData) {
			return ret, nil
		}
		return nil, err
	}
	return ret, nil
}

// Increment adds one analysis to the month, creating the entry if needed.
func Increment(ctx context.Context, conn repository.Querier, userID int, month string) (
	*model.DbUsage, error,
) {
	ret := &model.DbUsage{UserID: userID, Month: month}
	row := conn.QueryRow(ctx, `
	insert into usage_stats (user_id, month, analyses_count)
	values ($1, $2, 1)
	on conflict (user_id, month)
	do update set analyses_count = usage_stats.analyses_count + 1
	returning analyses_count
	`, userID, month)
	if err := row.Scan(&ret.AnalysesCount); err != nil {
		return nil, err
	}
	return ret, nil
}

func DeleteByUserID(ctx context.Context, conn repository.Querier, userID int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from usage_stats where user_id=$1", userID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
