package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string // connection string for the database
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogConfig         string // path to log config file
	LogFilter         string // zapfilter rules, e.g. "info:* debug:coach.*"
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry
	TelemetryStdout   bool   // export telemetry to stdout instead of otlp
	ProfilingPort     int    // port for profiling
	HTTPServerAddr    string // listen addr for the HTTP API
	MaxUploadSize     int64  // max size of an uploaded telemetry file in bytes
	TLSCertFile       string // path to TLS certificate
	TLSKeyFile        string // path to TLS key
	TraefikCerts      string // path to traefik certs file
	TraefikCertDomain string // the domain to lookup within the traefik certs
	NatsURL           string // nats server, empty disables publishing
	NatsStream        string // jetstream stream for analysis events
	EnableRemoteCoach bool   // use the chat completion endpoint for analysis
	CoachEndpoint     string // chat completion endpoint
	CoachAPIKey       string // api key for the chat completion endpoint
	CoachModel        string // model name passed to the chat completion endpoint
	CoachTimeout      string // timeout for a single completion request
	FreeTierLimit     int    // monthly analyses for the free tier, 0 keeps the policy value
	ProTierLimit      int    // monthly analyses for the pro tier, -1 is unlimited, 0 keeps the policy value
	AuthCacheTTL      string // how long a resolved api token stays cached
)

const DefaultMaxUploadSize = 10 << 20
