//nolint:dupl,funlen,errcheck //ok for this test code
package user

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
	base "github.com/mpapenbr/simlap-service-go/testsupport/basedata"
	"github.com/mpapenbr/simlap-service-go/testsupport/testdb"
)

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb(t)
	base.CreateSampleUser(pool)
	tests := []struct {
		name    string
		user    *model.DbUser
		wantErr bool
	}{
		{
			name: "new entry",
			user: &model.DbUser{Name: "other", APIToken: "othertoken", SubscriptionTier: model.TierPro},
		},
		{
			name: "tier defaults to free",
			user: &model.DbUser{Name: "notier", APIToken: "notiertoken"},
		},
		{
			name:    "duplicate token",
			user:    &model.DbUser{Name: "dup", APIToken: "testtoken"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Create(context.Background(), pool, tt.user)
			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			assert.Assert(t, got.ID > 0)
			assert.Equal(t, got.Name, tt.user.Name)
			assert.Assert(t, !got.CreatedAt.IsZero())
			if tt.user.SubscriptionTier == "" {
				assert.Equal(t, got.SubscriptionTier, model.TierFree)
			} else {
				assert.Equal(t, got.SubscriptionTier, tt.user.SubscriptionTier)
			}
		})
	}
}

func TestLoadByToken(t *testing.T) {
	pool := testdb.InitTestDb(t)
	sample := base.CreateSampleUser(pool)
	ctx := context.Background()

	got, err := LoadByToken(ctx, pool, "testtoken")
	assert.NilError(t, err)
	assert.DeepEqual(t, got, sample)

	_, err = LoadByToken(ctx, pool, "unknown")
	assert.Assert(t, errors.Is(err, repository.ErrNoData))
}

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb(t)
	sample := base.CreateSampleUser(pool)
	ctx := context.Background()

	got, err := LoadByID(ctx, pool, sample.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.APIToken, "testtoken")

	_, err = LoadByID(ctx, pool, sample.ID+1000)
	assert.Assert(t, errors.Is(err, repository.ErrNoData))
}

func TestDeleteByID(t *testing.T) {
	pool := testdb.InitTestDb(t)
	sample := base.CreateSampleUser(pool)

	num, err := DeleteByID(context.Background(), pool, sample.ID)
	assert.NilError(t, err)
	assert.Equal(t, num, 1)

	num, err = DeleteByID(context.Background(), pool, sample.ID)
	assert.NilError(t, err)
	assert.Equal(t, num, 0)
}
