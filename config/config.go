// Package config loads client configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dogmatiq/eliterpc/transport/httptransport"
	"github.com/dogmatiq/eliterpc/transport/httptransport/fasthttpengine"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "ELITERPC"

const (
	// EngineNetHTTP selects httptransport.NetHTTPEngine.
	EngineNetHTTP = "net/http"

	// EngineFastHTTP selects fasthttpengine.Engine.
	EngineFastHTTP = "fasthttp"
)

// DefaultTimeout is the request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Config is the configuration of an HTTP-based client.
type Config struct {
	// URL is the connection info passed to the transport.
	URL string

	// Timeout is the maximum duration of each HTTP exchange.
	Timeout time.Duration

	// Engine is the name of the HTTP engine, either EngineNetHTTP or
	// EngineFastHTTP.
	Engine string

	// Headers are added to every request.
	Headers map[string]string
}

// Load reads the configuration from v.
//
// The given dotenv files are loaded into the environment first. Files that do
// not exist are skipped. Environment variables are prefixed with EnvPrefix,
// for example ELITERPC_URL and ELITERPC_TIMEOUT.
func Load(v *viper.Viper, dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("unable to load environment file (%s): %w", f, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("engine", EngineNetHTTP)
	v.SetDefault("timeout", DefaultTimeout)

	c := Config{
		URL:     v.GetString("url"),
		Timeout: v.GetDuration("timeout"),
		Engine:  v.GetString("engine"),
		Headers: v.GetStringMapString("headers"),
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate returns an error if c is incomplete or inconsistent.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("invalid configuration: url must not be empty")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("invalid configuration: timeout must not be negative (%s)", c.Timeout)
	}

	switch c.Engine {
	case EngineNetHTTP, EngineFastHTTP:
		return nil
	default:
		return fmt.Errorf("invalid configuration: unknown engine (%s)", c.Engine)
	}
}

// TransportOptions returns the httptransport options described by c.
func (c Config) TransportOptions() []httptransport.Option {
	var opts []httptransport.Option

	switch c.Engine {
	case EngineFastHTTP:
		opts = append(opts, httptransport.WithEngine(
			&fasthttpengine.Engine{Timeout: c.Timeout},
		))
	default:
		opts = append(opts, httptransport.WithHTTPClient(
			&http.Client{
				Timeout:       c.Timeout,
				CheckRedirect: httptransport.DisallowRedirects,
			},
		))
	}

	for k, v := range c.Headers {
		opts = append(opts, httptransport.WithHeader(k, v))
	}

	return opts
}
