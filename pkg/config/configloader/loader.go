// Package configloader reads a service configuration from YAML, a .env file
// and the process environment with koanf.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"
	dotEnvFile        = ".env"
)

type Validator interface {
	Validate() error
}

// Load reads the configuration of the named service into T and validates it.
//
// Sources, lowest priority first: the YAML file (config.yaml, or the path in
// <SERVICE>_CONFIG_FILE), the .env file, and the process environment.
// Environment keys are matched by stripping the <SERVICE>_ prefix, lowercasing
// and replacing "_" with ".", so ADMIN_SESSION_IDLETIMEOUT sets
// session.idletimeout. A missing file is skipped silently; any other source
// failure is logged and skipped.
func Load[T Validator](serviceName string) (T, error) {
	var cfg T
	prefix := strings.ToUpper(serviceName) + "_"
	k := koanf.New(".")

	for _, load := range []func(*koanf.Koanf, string) error{loadYAML, loadDotEnv, loadEnv} {
		if err := load(k, prefix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARN: %v", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadYAML(k *koanf.Koanf, prefix string) error {
	path := defaultConfigFile
	if override := os.Getenv(prefix + "CONFIG_FILE"); override != "" {
		path = override
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading YAML config %q: %w", path, err)
	}
	return nil
}

func loadDotEnv(k *koanf.Koanf, prefix string) error {
	vars, err := godotenv.Read(dotEnvFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dotEnvFile, err)
	}
	values := make(map[string]any, len(vars))
	for key, value := range vars {
		if strings.HasPrefix(strings.ToUpper(key), prefix) {
			values[keyPath(prefix, key)] = value
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}
	return nil
}

func loadEnv(k *koanf.Koanf, prefix string) error {
	transform := func(key string) string { return keyPath(prefix, key) }
	if err := k.Load(env.Provider(prefix, ".", transform), nil); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	return nil
}

// keyPath maps ADMIN_SESSION_IDLETIMEOUT to session.idletimeout.
func keyPath(prefix, key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, strings.ToLower(prefix))
	return strings.ReplaceAll(key, "_", ".")
}
