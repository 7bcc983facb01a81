// Package config loads typed configuration from the environment.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// optional .env files are read into a map, the process environment is layered
// on top, and the result is parsed into any struct annotated with `env` tags.
// The process environment is never modified and nothing is cached, so two
// Load calls with different options never see each other's values.
//
// # Usage
//
//	type Config struct {
//	    Email    string        `env:"EMAIL,required"`
//	    Password string        `env:"PASSWORD,required"`
//	    Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
//	}
//
//	cfg, err := config.Load[Config](
//	    config.WithPrefix("GARMIN_"),
//	    config.WithEnvFile(".env"),
//	    config.WithOptionalEnvFiles(),
//	)
//	if err != nil {
//	    log.Fatalf("loading config: %v", err)
//	}
//
// # Error Handling
//
//   - ErrParsingConfig – the environment does not satisfy the struct tags.
//   - ErrEnvFile       – a .env file could not be read.
package config
