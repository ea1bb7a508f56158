package user

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/cmd/cmdutil"
	"github.com/mpapenbr/simlap-service-go/pkg/config"
	"github.com/mpapenbr/simlap-service-go/pkg/db/postgres"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/api"
	reposPostgres "github.com/mpapenbr/simlap-service-go/pkg/repository/postgres"
	"github.com/mpapenbr/simlap-service-go/pkg/utils"
)

var (
	name string
	tier string
)

func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "manage api users",
	}
	cmd.AddCommand(newCreateCmd())
	return cmd
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "creates a user and prints its api token",
		Long: "Creates a user with a random api token. Only the hash of the token " +
			"is stored, the token is printed once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			cmdutil.WaitForDB(cmd.Context())
			pool := postgres.InitWithURL(config.DB)
			defer pool.Close()
			return createUser(cmd.Context(), os.Stdout,
				reposPostgres.NewRepositoriesFromPool(pool).User())
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the user")
	cmd.Flags().StringVar(&tier, "tier", string(model.TierFree),
		"subscription tier (free, pro)")
	//nolint:errcheck // flag exists
	cmd.MarkFlagRequired("name")
	return cmd
}

func createUser(ctx context.Context, out io.Writer, repo api.UserRepository) error {
	subscription := model.SubscriptionTier(tier)
	if subscription != model.TierFree && subscription != model.TierPro {
		return fmt.Errorf("unknown tier %q", tier)
	}
	token := utils.NewAPIToken()
	u, err := repo.Create(ctx, &model.DbUser{
		Name:             name,
		APIToken:         utils.HashAPIToken(token),
		SubscriptionTier: subscription,
	})
	if err != nil {
		log.Error("could not create user", log.ErrorField(err))
		return err
	}
	log.Info("user created", log.Int("id", u.ID), log.String("tier", string(u.SubscriptionTier)))
	_, err = fmt.Fprintf(out, "id: %d\nname: %s\ntier: %s\napi-token: %s\n",
		u.ID, u.Name, u.SubscriptionTier, token)
	return err
}
