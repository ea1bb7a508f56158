package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // served on localhost only
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/cmd/cmdutil"
	"github.com/mpapenbr/simlap-service-go/pkg/config"
	"github.com/mpapenbr/simlap-service-go/pkg/db/postgres"
	"github.com/mpapenbr/simlap-service-go/pkg/http/api"
	"github.com/mpapenbr/simlap-service-go/pkg/http/auth"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/notify"
	natspub "github.com/mpapenbr/simlap-service-go/pkg/notify/nats"
	"github.com/mpapenbr/simlap-service-go/pkg/quota"
	reposPostgres "github.com/mpapenbr/simlap-service-go/pkg/repository/postgres"
	"github.com/mpapenbr/simlap-service-go/pkg/service/lap"
	"github.com/mpapenbr/simlap-service-go/pkg/telemetry"
	"github.com/mpapenbr/simlap-service-go/pkg/utils/certs"
)

//nolint:funlen // flag definitions
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.HTTPServerAddr,
		"http-server-addr",
		"a",
		"localhost:3001",
		"HTTP server listen address")
	cmd.Flags().Int64Var(&config.MaxUploadSize,
		"max-upload-size",
		config.DefaultMaxUploadSize,
		"max size of an uploaded telemetry file in bytes")
	cmd.Flags().StringVar(&config.AuthCacheTTL,
		"auth-cache-ttl",
		"5m",
		"how long a resolved api token is cached")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().BoolVar(&config.TelemetryStdout,
		"telemetry-stdout",
		false,
		"print telemetry data to stdout instead of sending it to the endpoint")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"path to TLS certificate")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"path to TLS key")
	cmd.Flags().StringVar(&config.TraefikCerts,
		"traefik-certs",
		"",
		"path to traefik acme.json (takes precedence over tls-cert/tls-key)")
	cmd.Flags().StringVar(&config.TraefikCertDomain,
		"traefik-domain",
		"",
		"domain to lookup in the traefik certs")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"NATS server url, analysis events are published to JetStream if set")
	cmd.Flags().StringVar(&config.NatsStream,
		"nats-stream",
		natspub.DefaultStream,
		"JetStream stream for analysis events")
	cmd.Flags().IntVar(&config.FreeTierLimit,
		"free-tier-limit",
		0,
		"monthly analyses for the free tier (0 keeps the default)")
	cmd.Flags().IntVar(&config.ProTierLimit,
		"pro-tier-limit",
		0,
		"monthly analyses for the pro tier (-1 unlimited, 0 keeps the default)")
	cmdutil.AddCoachFlags(cmd)
	return cmd
}

//nolint:funlen // startup sequence
func startServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, sqlLogger := cmdutil.SetupLogger()
	log.Debug("Config:",
		log.String("db", config.DB),
		log.String("addr", config.HTTPServerAddr),
		log.String("nats", config.NatsURL),
		log.Bool("remoteCoach", config.EnableRemoteCoach),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // no timeouts for pprof
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	cmdutil.WaitForDB(ctx)

	var telemetryData *config.Telemetry
	pgTraceOption := postgres.WithTracer(sqlLogger)
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetryData, err = config.SetupTelemetry(ctx); err == nil {
			pgTraceOption = postgres.WithOtlpTracer()
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	pool := postgres.InitWithURL(config.DB, pgTraceOption)
	defer pool.Close()

	hub := notify.NewHub()
	defer hub.Close()
	publisher, closePublisher := setupPublisher(ctx, hub)
	defer closePublisher()

	handler, err := buildHandler(pool, hub, publisher)
	if err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}

	tlsConfig, err := certs.TLSConfig(certs.Config{
		CertFile:      config.TLSCertFile,
		KeyFile:       config.TLSKeyFile,
		TraefikFile:   config.TraefikCerts,
		TraefikDomain: config.TraefikCertDomain,
	})
	if err != nil {
		log.Error("could not load certificates", log.ErrorField(err))
		return err
	}

	// no write timeout, /api/events streams
	server := &http.Server{
		Addr:              config.HTTPServerAddr,
		Handler:           handler,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if tlsConfig == nil {
		server.Handler = h2c.NewHandler(handler, &http2.Server{})
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			log.String("addr", config.HTTPServerAddr),
			log.Bool("tls", tlsConfig != nil))
		var err error
		if tlsConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		errChan <- err
	}()
	setupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case v := <-sigChan:
		log.Debug("Got signal ", log.Any("signal", v))
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", log.ErrorField(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", log.ErrorField(err))
	}
	if telemetryData != nil {
		telemetryData.Shutdown()
	}
	log.Info("Server terminated")
	return nil
}

// setupPublisher combines the in-process hub with the optional JetStream
// publisher.
func setupPublisher(ctx context.Context, hub *notify.Hub) (notify.Publisher, func()) {
	if config.NatsURL == "" {
		return hub, func() {}
	}
	nc, err := nats.Connect(config.NatsURL, nats.Name("simlap-service"))
	if err != nil {
		log.Warn("Could not connect to nats, events stay local", log.ErrorField(err))
		return hub, func() {}
	}
	js, err := natspub.New(ctx, nc, natspub.WithStream(config.NatsStream))
	if err != nil {
		log.Warn("Could not setup JetStream, events stay local", log.ErrorField(err))
		nc.Close()
		return hub, func() {}
	}
	log.Info("Publishing analysis events", log.String("nats", config.NatsURL))
	return notify.Multi(hub, js), func() {
		if err := nc.Drain(); err != nil {
			log.Warn("nats drain", log.ErrorField(err))
		}
	}
}

//nolint:whitespace // can't make both editor and linter happy
func buildHandler(
	pool *pgxpool.Pool,
	hub *notify.Hub,
	publisher notify.Publisher,
) (http.Handler, error) {
	quotaOpts := []quota.Option{}
	if config.FreeTierLimit != 0 {
		quotaOpts = append(quotaOpts, quota.WithTierLimit(model.TierFree, config.FreeTierLimit))
	}
	if config.ProTierLimit != 0 {
		quotaOpts = append(quotaOpts, quota.WithTierLimit(model.TierPro, config.ProTierLimit))
	}
	evaluator, err := quota.NewEvaluator(quotaOpts...)
	if err != nil {
		return nil, err
	}
	repos := reposPostgres.NewRepositoriesFromPool(pool)
	svc, err := lap.NewService(
		lap.WithRepositories(repos),
		lap.WithTxManager(reposPostgres.NewTransactionManager(pool)),
		lap.WithQuota(evaluator),
		lap.WithAnalyzer(cmdutil.NewAnalyzer()),
		lap.WithExtractor(telemetry.NewExtractor()),
		lap.WithPublisher(publisher),
	)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(config.AuthCacheTTL)
	if err != nil {
		log.Warn("Invalid auth cache ttl. Setting default 5m", log.ErrorField(err))
		ttl = 5 * time.Minute
	}
	apiServer := api.NewServer(
		api.WithLapService(svc),
		api.WithHub(hub),
		api.WithMaxUploadSize(config.MaxUploadSize),
		api.WithAuth(auth.NewMiddleware(
			auth.WithUserCache(auth.NewUserCache(repos.User(), ttl)))),
	)
	return otelhttp.NewHandler(
		newCORS().Handler(api.TraceID(apiServer.Handler())),
		"simlap",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		})), nil
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func newCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Trace-ID"},
	})
}
