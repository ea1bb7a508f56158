package tcpostgres

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultImage = "postgres:16-alpine"

type (
	PostgresContainer struct {
		testcontainers.Container
	}

	containerSetup struct {
		req   testcontainers.ContainerRequest
		reuse bool
	}

	PostgresContainerOption func(s *containerSetup)
)

func WithImage(image string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.Image = image
	}
}

func WithWaitStrategy(strategies ...wait.Strategy) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.WaitingFor = wait.ForAll(strategies...).WithDeadline(1 * time.Minute)
	}
}

func WithPort(port string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.ExposedPorts = append(s.req.ExposedPorts, port)
	}
}

// WithName names the container. Named containers are reused across test
// packages.
func WithName(containerName string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.Name = containerName
		s.reuse = true
	}
}

func WithInitialDatabase(user, password, dbName string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.Env["POSTGRES_USER"] = user
		s.req.Env["POSTGRES_PASSWORD"] = password
		s.req.Env["POSTGRES_DB"] = dbName
	}
}

func SetupPostgres(ctx context.Context, opts ...PostgresContainerOption) (
	*PostgresContainer, error,
) {
	s := &containerSetup{
		req: testcontainers.ContainerRequest{
			Image: defaultImage,
			Env:   map[string]string{},
			Cmd:   []string{"postgres", "-c", "fsync=off"},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: s.req,
			Started:          true,
			Reuse:            s.reuse,
		})
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{Container: container}, nil
}
