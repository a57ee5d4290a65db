package logging

import (
	"os"
	"path/filepath"

	"github.com/Station-Manager/errors"
	"github.com/joho/godotenv"
)

// Environment looks up configuration values by key.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// EnvFunc adapts a lookup function to Environment.
type EnvFunc func(key string) (string, bool)

func (f EnvFunc) LookupEnv(key string) (string, bool) {
	return f(key)
}

// MapEnv is a fixed Environment, handy in tests.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// OSEnv reads the process environment.
var OSEnv Environment = EnvFunc(os.LookupEnv)

// overlayEnv serves values from the overlay first and falls back to base.
type overlayEnv struct {
	overlay map[string]string
	base    Environment
}

func (o *overlayEnv) LookupEnv(key string) (string, bool) {
	if v, ok := o.overlay[key]; ok {
		return v, true
	}
	if o.base == nil {
		return emptyString, false
	}
	return o.base.LookupEnv(key)
}

// DotEnv returns an Environment where values from dir/.env override base.
// A missing .env file is not an error; base is returned unchanged. The process
// environment is never modified.
func DotEnv(dir string, base Environment) (Environment, error) {
	const op errors.Op = "logging.DotEnv"
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, errors.New(op).Err(err).Msg(errMsgDotEnv)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return base, errors.New(op).Err(err).Msg(errMsgDotEnv)
	}
	return &overlayEnv{overlay: values, base: base}, nil
}
