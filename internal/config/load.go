package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFile = "papergen_config.json"
	envPrefix  = "PAPERGEN"
)

var (
	mu   sync.Mutex
	cfg  Config
	vp   *viper.Viper
	home = os.Getenv("HOME")

	// config file reading order starts with current working directory, then home, finally /etc
	paths = []string{
		".",
		filepath.Join(home, ".papergen"),
		"/etc/papergen",
	}

	errConfigNotFound = errors.New("file not found in any of the paths")
)

func getViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaultConfig() *viper.Viper {
	v := getViper()
	v.SetDefault("general.data_dir", filepath.Join(home, ".papergen"))
	v.SetDefault("general.debug", false)
	v.SetDefault("rest.port", 8080)
	v.SetDefault("rest.allowed_origins", []string{"*"})
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.path", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.strict_delete", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", "papergen")
	return v
}

// LoadConfig reads papergen_config.json from the first search path holding it, applies
// PAPERGEN_* environment overrides and validates the result. A missing file is not an
// error: defaults and environment apply.
func LoadConfig() error {
	mu.Lock()
	defer mu.Unlock()
	return load()
}

func load() error {
	v := setDefaultConfig()

	config, err := findConfig(paths, configFile)
	switch {
	case err == nil:
		// Viper only reads the buffer, the file on disk keeps its comments
		if err := v.ReadConfig(bytes.NewBuffer(removeComments(config))); err != nil {
			return pkgerrors.Wrapf(err, "unable to parse %s", configFile)
		}
	case !errors.Is(err, errConfigNotFound):
		return pkgerrors.Wrapf(err, "unable to read %s", configFile)
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return pkgerrors.Wrap(err, "unable to decode config")
	}
	if err := loaded.Validate(); err != nil {
		return pkgerrors.Wrap(err, "invalid config")
	}

	cfg, vp = loaded, v
	return nil
}

// SetConfig overrides a single key, e.g. from a command line flag, and re-decodes the config.
func SetConfig(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()

	if vp == nil {
		if err := load(); err != nil {
			return err
		}
	}
	previous := vp.Get(key)
	vp.Set(key, value)

	var updated Config
	err := vp.Unmarshal(&updated)
	if err == nil {
		err = updated.Validate()
	}
	if err != nil {
		vp.Set(key, previous)
		return pkgerrors.Wrapf(err, "unable to set %s", key)
	}
	cfg = updated
	return nil
}

// GetConfig returns the loaded config, loading it on first use. Falls back to the
// defaults when the config on disk cannot be loaded.
func GetConfig() *Config {
	mu.Lock()
	defer mu.Unlock()

	if reflect.DeepEqual(cfg, Config{}) {
		if err := load(); err != nil {
			setDefaultConfig().Unmarshal(&cfg)
		}
	}
	return &cfg
}

func findConfig(paths []string, filename string) ([]byte, error) {
	for _, path := range paths {
		fullPath := filepath.Join(path, filename)
		if _, err := os.Stat(fullPath); err == nil {
			return os.ReadFile(fullPath)
		}
	}

	return nil, errConfigNotFound
}

var commentLine = regexp.MustCompile(`(?m)^[ \t]*//.*$`)

// removeComments drops whole-line '//' comments. Values such as URLs keep their slashes.
func removeComments(configBytes []byte) []byte {
	return commentLine.ReplaceAll(configBytes, nil)
}
