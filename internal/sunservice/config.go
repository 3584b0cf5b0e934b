package sunservice

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the runtime configuration of the demo service. Every field is
// populated from the environment, which is how the rendered ConfigMap reaches
// the container.
type Config struct {
	// ServiceName is the identity the service reports in its payloads.
	// Deployed instances receive dawn, day, or dusk; any other string works
	// for local runs.
	ServiceName string `envconfig:"SERVICE_NAME" default:"sunservice"`
	// Port is the port the HTTP server listens on.
	Port int `envconfig:"PORT" default:"8001"`
	// Environment names the environment the service believes it runs in and
	// is echoed verbatim by the info endpoint.
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	// LogLevel sets the verbosity of the structured logs.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// FeatureNewUI is plumbed through the ConfigMap but gates nothing yet.
	FeatureNewUI bool `envconfig:"FEATURE_NEW_UI" default:"false"`
	// GracefulShutdownTimeout bounds how long in-flight requests may take to
	// drain once a shutdown signal arrives.
	GracefulShutdownTimeout time.Duration `envconfig:"GRACEFUL_SHUTDOWN_TIMEOUT" default:"30s"`
}

// ConfigFromEnv returns a Config derived from environment variables.
func ConfigFromEnv() Config {
	cfg := Config{}
	envconfig.MustProcess("", &cfg)
	return cfg
}
