//nolint:whitespace // can't make both editor and linter happy
package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
)

var selector = `select u.id, u.name, u.api_token, u.subscription_tier, u.created_at
	from users u`

func Create(
	ctx context.Context,
	conn repository.Querier,
	user *model.DbUser,
) (*model.DbUser, error) {
	tier := user.SubscriptionTier
	if tier == "" {
		tier = model.TierFree
	}
	row := conn.QueryRow(ctx, `
	insert into users (
		name, api_token, subscription_tier
	) values ($1,$2,$3)
	returning id
		`,
		user.Name, user.APIToken, tier,
	)
	var id int
	if err := row.Scan(&id); err != nil {
		return nil, err
	}
	return LoadByID(ctx, conn, id)
}

func LoadByID(ctx context.Context, conn repository.Querier, id int) (
	*model.DbUser, error,
) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where u.id=$1", selector), id)
	return readData(row)
}

func LoadByToken(ctx context.Context, conn repository.Querier, token string) (
	*model.DbUser, error,
) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where u.api_token=$1", selector), token)
	return readData(row)
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from users where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func readData(row pgx.Row) (*model.DbUser, error) {
	var item model.DbUser
	if err := row.Scan(
		&item.ID, &item.Name, &item.APIToken, &item.SubscriptionTier, &item.CreatedAt,
	); err != nil {
		return nil, repository.NoData(err)
	}
	return &item, nil
}
