package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/environment"
)

type (
	// AppConfig contains full configuration of the service.
	AppConfig struct {
		Env environment.Env `long:"env" env:"ENV" description:"Environment application is running in" default:"local"`

		Logger    Logger    `group:"Logger options" namespace:"logger" env-namespace:"LOGGER"`
		Postgres  Postgres  `group:"PostgreSQL options" namespace:"postgres" env-namespace:"POSTGRES"`
		HTTP      Server    `group:"HTTP server options" namespace:"http" env-namespace:"HTTP"`
		ACME      ACME      `group:"ACME options" namespace:"acme" env-namespace:"ACME"`
		Gateway   Gateway   `group:"Gateway control plane options" namespace:"gateway" env-namespace:"GATEWAY"`
		Responder Responder `group:"Challenge responder options" namespace:"responder" env-namespace:"RESPONDER"`
		Issuer    Issuer    `group:"Issuer options" namespace:"issuer" env-namespace:"ISSUER"`
		Tickers   Tickers   `group:"Tickers options" namespace:"tickers" env-namespace:"TICKER"`
	}

	// Logger contains logger configuration.
	Logger struct {
		Level string `long:"level" env:"LEVEL" description:"Log level to use; environment-base level is used when empty"`
	}

	// Server contains server configuration, regardless
	// of the server type http.
	Server struct {
		Host string `long:"host" env:"HOST" description:"Host to listen on, default is empty (all interfaces)"`
		Port int    `long:"port" env:"PORT" description:"Port to listen on" required:"true"`
	}

	// Postgres contains postgres configuration.
	Postgres struct {
		MainDBConnectionString string        `long:"maindb_connection_string" env:"MAINDB_CONNECTION_STRING" description:"PGX connection string to the mainDB" required:"true"` //nolint:lll
		Timeout                time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout for queries" default:"1s"`
	}

	// ACME contains certificate authority configuration.
	ACME struct {
		DirectoryURL   string        `long:"directory_url" env:"DIRECTORY_URL" description:"ACME CA directory URL" default:"https://acme-v02.api.letsencrypt.org/directory"` //nolint:lll
		AccountKeyPath string        `long:"account_key_path" env:"ACCOUNT_KEY_PATH" description:"Path to the PEM-encoded ACME account key" required:"true"`                //nolint:lll
		PollInterval   time.Duration `long:"poll_interval" env:"POLL_INTERVAL" description:"Sleep between order validation polls" default:"5s"`
		PollTimeout    time.Duration `long:"poll_timeout" env:"POLL_TIMEOUT" description:"Total wait for order validation" default:"60s"`
		RetryBaseDelay time.Duration `long:"retry_base_delay" env:"RETRY_BASE_DELAY" description:"Base backoff delay for transient CA errors" default:"10s"` //nolint:lll
	}

	// Gateway contains gateway control plane configuration.
	Gateway struct {
		Endpoint       string        `long:"endpoint" env:"ENDPOINT" description:"Base URL of the gateway control plane API" required:"true"`
		Token          string        `long:"token" env:"TOKEN" description:"Bearer token for the control plane API"`
		Timeout        time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout for a single control plane call" default:"30s"`
		RetryBaseDelay time.Duration `long:"retry_base_delay" env:"RETRY_BASE_DELAY" description:"Base backoff delay for transient gateway errors" default:"2s"` //nolint:lll
	}

	// Responder contains challenge responder configuration.
	Responder struct {
		Name        string `long:"name" env:"NAME" description:"Name of the challenge responder app" required:"true"`
		BackendFQDN string `long:"backend_fqdn" env:"BACKEND_FQDN" description:"FQDN of the challenge responder backend" required:"true"`
	}

	// Issuer contains issuance scheduling configuration.
	Issuer struct {
		MaxConcurrency  int  `long:"max_concurrency" env:"MAX_CONCURRENCY" description:"Number of domains issued in parallel" default:"3"`
		RenewBeforeDays int  `long:"renew_before_days" env:"RENEW_BEFORE_DAYS" description:"Renew certificates expiring within this many days" default:"30"` //nolint:lll
		Force           bool `long:"force" env:"FORCE" description:"Renew all certificates regardless of expiry"`
		DryRun          bool `long:"dry_run" env:"DRY_RUN" description:"Log planned work without touching the CA or gateway"`
	}

	// Tickers struct of time duration tickers.
	Tickers struct {
		Renewal time.Duration `long:"renewal_duration" env:"RENEWAL" description:"Time for tick renewal daemon" default:"12h"`
		Probe   time.Duration `long:"probe_duration" env:"PROBE" description:"Time for tick served-certificate probe daemon" default:"10m"`
	}
)

// ErrHelp is returned when --help flag is
// used and application should not launch.
var ErrHelp = errors.New("help")

// New reads flags and envs and returns AppConfig
// that corresponds to the values read.
func New() (*AppConfig, error) {
	var config AppConfig
	if _, err := flags.Parse(&config); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}
