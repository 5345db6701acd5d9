package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	configFileEnvName = "TRACKER_CONFIG_FILE"
	envPrefix         = "TRACKER"
)

var ErrInvalidConfig = errors.New("invalid config")

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != ""
}

type backend struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TLS            tlsFiles      `mapstructure:"tls"`
	WaitAttempts   int           `mapstructure:"wait_attempts"`
}

type scrape struct {
	RefreshDelay time.Duration `mapstructure:"refresh_delay"`
	Cooldown     time.Duration `mapstructure:"cooldown"`
}

type topics struct {
	ClientEvents string `mapstructure:"client_events"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
}

func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

// RegistryEnabled reports whether event schemas go through a schema
// registry.
func (b broker) RegistryEnabled() bool {
	return len(b.SchemaRegistryURLs) != 0
}

// ClientEventsSubject is the registry subject of the client events value.
func (b broker) ClientEventsSubject() string {
	return b.Topics.ClientEvents + "-value"
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	Locale         string     `mapstructure:"locale"`
	TimeZone       string     `mapstructure:"time_zone"`
	Backend        backend    `mapstructure:"backend"`
	Scrape         scrape     `mapstructure:"scrape"`
	Broker         broker     `mapstructure:"broker"`

	Lang     language.Tag   `mapstructure:"-"`
	Location *time.Location `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", "127.0.0.1:8080")
	v.SetDefault("locale", "en-US")
	v.SetDefault("time_zone", "Local")
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.request_timeout", 10*time.Second)
	v.SetDefault("backend.tls.ca", "")
	v.SetDefault("backend.tls.cert", "")
	v.SetDefault("backend.tls.key", "")
	v.SetDefault("backend.wait_attempts", 1)
	v.SetDefault("scrape.refresh_delay", 5*time.Second)
	v.SetDefault("scrape.cooldown", 2*time.Second)
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.client_events", "tracker-client-events")
}

// Load reads the config and exits with code 2 when it is invalid.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		die(err)
	}

	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the YAML file at path on top of the defaults and the
// TRACKER_ prefixed environment. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	lang, err := language.Parse(c.Locale)
	if err != nil {
		errs = append(errs, fmt.Errorf("locale: %w", err))
	}
	c.Lang = lang

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		errs = append(errs, fmt.Errorf("time_zone: %w", err))
	}
	c.Location = loc

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url: %q", c.Backend.BaseURL))
	}
	if c.Backend.RequestTimeout <= 0 {
		errs = append(errs, errors.New("backend.request_timeout: must be positive"))
	}
	if c.Backend.WaitAttempts < 1 {
		errs = append(errs, errors.New("backend.wait_attempts: at least 1"))
	}
	if (c.Backend.TLS.Cert == "") != (c.Backend.TLS.Key == "") {
		errs = append(errs, errors.New("backend.tls: cert and key go together"))
	}
	if c.Scrape.RefreshDelay <= 0 {
		errs = append(errs, errors.New("scrape.refresh_delay: must be positive"))
	}
	if c.Scrape.Cooldown <= 0 {
		errs = append(errs, errors.New("scrape.cooldown: must be positive"))
	}
	for _, u := range c.Broker.SchemaRegistryURLs {
		if pu, err := url.Parse(u); err != nil || pu.Host == "" {
			errs = append(errs, fmt.Errorf("broker.schema_registry_urls: %q", u))
		}
	}
	if c.Broker.Enabled() && c.Broker.Topics.ClientEvents == "" {
		errs = append(errs, errors.New("broker.topics.client_events: required"))
	}

	if len(errs) != 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	cmdLine.Usage = func() {}
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	Locale=%q
	TimeZone=%q

	Backend:
	BaseURL=%q
	RequestTimeout=%q
	TLS=%t
	WaitAttempts=%d

	Scrape:
	RefreshDelay=%q
	Cooldown=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		ClientEvents=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Locale,
		c.TimeZone,
		c.Backend.BaseURL,
		c.Backend.RequestTimeout,
		c.Backend.TLS.Enabled(),
		c.Backend.WaitAttempts,
		c.Scrape.RefreshDelay,
		c.Scrape.Cooldown,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.ClientEvents,
	)
}
