package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomcpgo/replicate/pkg/client"
	"github.com/gomcpgo/replicate/pkg/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Viper keys. With the REPLICATE prefix they map onto the same environment
// variables the library reads.
const (
	keyToken        = "api_token"
	keyBaseURL      = "base_url"
	keyProxyURL     = "proxy_url"
	keyPollInterval = "poll_interval_ms"
	keyLogLevel     = "log_level"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	v          *viper.Viper
	configPath string
	headers    []string
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func newApp() *app {
	a := &app{v: viper.New(), logger: zerolog.Nop()}
	a.v.SetEnvPrefix("REPLICATE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "replicate",
		Short:         "Run predictions on Replicate models",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (.yaml, .yml, .toml or .json)")
	flags.String("token", "", "API token (defaults to REPLICATE_API_TOKEN)")
	flags.String("base-url", "", "API base URL (defaults to "+config.DefaultBaseURL+")")
	flags.String("proxy-url", "", "Proxy URL prefixed to every request")
	flags.Int("poll-interval-ms", 0, "Delay between status checks in milliseconds")
	flags.StringArrayVarP(&a.headers, "header", "H", nil, "Extra request header as key=value (repeatable)")
	flags.String("log-level", "warn", "Log level: debug|info|warn|error")

	_ = a.v.BindPFlag(keyToken, flags.Lookup("token"))
	_ = a.v.BindPFlag(keyBaseURL, flags.Lookup("base-url"))
	_ = a.v.BindPFlag(keyProxyURL, flags.Lookup("proxy-url"))
	_ = a.v.BindPFlag(keyPollInterval, flags.Lookup("poll-interval-ms"))
	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		modelsCmd(),
		versionsCmd(a),
		predictCmd(a),
		getCmd(a),
		cancelCmd(a),
		historyCmd(a),
		fakeServerCmd(a),
	)
	return root
}

func (a *app) setupLogger() error {
	level, err := zerolog.ParseLevel(a.v.GetString(keyLogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

// loadConfig layers the config file under environment variables and flags
func (a *app) loadConfig() (config.Config, error) {
	var cfg config.Config
	if a.configPath != "" {
		fileCfg, err := config.LoadFile(a.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	headers, err := parsePairs(a.headers)
	if err != nil {
		return cfg, fmt.Errorf("invalid header: %w", err)
	}

	cfg = config.Merge(cfg, config.Config{
		Token:             a.v.GetString(keyToken),
		BaseURL:           a.v.GetString(keyBaseURL),
		ProxyURL:          a.v.GetString(keyProxyURL),
		PollingIntervalMS: a.v.GetInt(keyPollInterval),
		Headers:           headers,
	})
	return cfg, nil
}

func (a *app) newClient() (*client.ReplicateClient, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return client.NewReplicateClient(cfg, client.WithLogger(a.logger))
}
