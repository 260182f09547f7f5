// Package config loads process settings from defaults, an optional file
// and CYPHERGO_* environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment override, e.g. CYPHERGO_API_BASE_URL.
const EnvPrefix = "CYPHERGO"

// Config is the complete process configuration.
type Config struct {
	Server  Server  `mapstructure:"server"`
	API     API     `mapstructure:"api"`
	UI      UI      `mapstructure:"ui"`
	Session Session `mapstructure:"session"`
	Log     Log     `mapstructure:"log"`
}

// Server holds the listener settings.
type Server struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0s"`
}

// API locates the hash service and bounds each call to it.
type API struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0s"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"min=1,max=10"`
}

// UI configures the hashing page.
type UI struct {
	Ordering string `mapstructure:"ordering" validate:"oneof=last-resolved latest-issued"`
	// PropsKey seals component props. Empty means a random key per process,
	// which invalidates open pages on restart.
	PropsKey string `mapstructure:"props_key"`
}

// Session controls how long an idle page keeps its server-side state.
type Session struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0s"`
}

// Log selects the log level and encoder.
type Log struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.shutdown_timeout": "10s",
	"api.base_url":            "http://localhost:8000",
	"api.timeout":             "30s",
	"api.retry_attempts":      1,
	"ui.ordering":             "last-resolved",
	"ui.props_key":            "",
	"session.ttl":             "30m",
	"log.level":               "info",
	"log.development":         false,
}

type options struct {
	logger   *zap.Logger
	onChange func(*Config)
}

// Option configures Load.
type Option func(*options)

// WithLogger sets the logger used to report reloads. Without it reloads
// are reported through zap.L() when they happen, so a logger installed
// later with zap.ReplaceGlobals receives them.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func (o *options) log() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	return zap.L().Named("config")
}

// WithOnChange registers fn to run with the new configuration every time
// the config file changes and still validates. Only settings the caller
// applies from fn take effect; everything else is read once at start.
func WithOnChange(fn func(*Config)) Option {
	return func(o *options) { o.onChange = fn }
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment are used. A non-empty path is watched for
// changes.
func Load(path string, opts ...Option) (*Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	val, err := newValidator()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg, err := decode(v, val)
	if err != nil {
		return nil, err
	}
	if cfg.UI.PropsKey == "" {
		if cfg.UI.PropsKey, err = randomKey(); err != nil {
			return nil, err
		}
	}

	if path != "" {
		propsKey := cfg.UI.PropsKey
		v.OnConfigChange(func(_ fsnotify.Event) {
			next, err := decode(v, val)
			if err != nil {
				o.log().Error("config reload failed", zap.String("path", path), zap.Error(err))
				return
			}
			if next.UI.PropsKey == "" {
				next.UI.PropsKey = propsKey
			}
			o.log().Info("config reloaded", zap.String("path", path))
			if o.onChange != nil {
				o.onChange(next)
			}
		})
		v.WatchConfig()
	}

	return cfg, nil
}

func decode(v *viper.Viper, val *configValidator) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := val.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generate props key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ErrTranslatorNotFound indicates the English translator is unavailable.
var ErrTranslatorNotFound = errors.New("config: translator not found")

type configValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newValidator() (*configValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	trans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &configValidator{validate: validate, translator: trans}, nil
}

// Validate returns one error per failing key, joined, each naming the key
// the way it is spelled in a config file.
func (cv *configValidator) Validate(cfg *Config) error {
	err := cv.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: validate: %w", err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		errs = append(errs, fmt.Errorf("config: %s: %s", key, fe.Translate(cv.translator)))
	}
	return errors.Join(errs...)
}
