package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option configures a single Load call.
type Option func(*options)

type options struct {
	prefix   string
	envFiles []string
	optional bool
}

// WithPrefix prepends prefix to every env tag, e.g. "GARMIN_".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnvFile reads variables from the given .env files. Process environment
// wins over file values; earlier files win over later ones.
func WithEnvFile(files ...string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, files...)
	}
}

// WithOptionalEnvFiles makes missing .env files a no-op instead of an error.
func WithOptionalEnvFiles() Option {
	return func(o *options) {
		o.optional = true
	}
}

// Load parses the environment into a new T using its `env` struct tags.
// Nothing is cached and the process environment is never modified.
//
// Example:
//
//	type Config struct {
//		Email    string `env:"EMAIL,required"`
//		Password string `env:"PASSWORD,required"`
//	}
//
//	cfg, err := config.Load[Config](config.WithPrefix("GARMIN_"), config.WithEnvFile(".env"))
func Load[T any](opts ...Option) (T, error) {
	var cfg T

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	vars, err := environ(o)
	if err != nil {
		return cfg, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: vars,
		Prefix:      o.prefix,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

// environ merges .env files under the process environment.
func environ(o *options) (map[string]string, error) {
	vars := make(map[string]string)

	for i := len(o.envFiles) - 1; i >= 0; i-- {
		name := o.envFiles[i]
		values, err := godotenv.Read(name)
		if err != nil {
			if o.optional && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrEnvFile, name, err)
		}
		for k, v := range values {
			vars[k] = v
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars, nil
}
