package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/apikit/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem is the FileSystem backed by the os package and godotenv.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Files are the config and env files a load reads.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config.yml and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// Resolve returns the explicit paths in opts, searching standard
// locations for any left empty.
func (r *Resolver) Resolve(serviceName string, opts LoaderConfig) Files {
	files := Files{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// shortName strips everything up to the last dash: "acme-users" -> "users".
func shortName(serviceName string) string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 {
		return serviceName[idx+1:]
	}
	return serviceName
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, name := range uniq(serviceName, shortName(serviceName)) {
		for _, up := range []string{".", "..", "../.."} {
			paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", up, name))
		}
	}
	return append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
}

func envCandidates(serviceName string) []string {
	var dirs []string
	for _, name := range uniq(serviceName, shortName(serviceName)) {
		for _, up := range []string{".", "..", "../.."} {
			dirs = append(dirs, fmt.Sprintf("%s/cmd/%s", up, name), fmt.Sprintf("%s/config/%s", up, name))
		}
	}
	dirs = append(dirs, "./config", "../config", "../../config", ".", "..", "../..")

	var paths []string
	for _, file := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			paths = append(paths, dir+"/"+file)
		}
	}
	return paths
}

// LoaderConfig holds the loader's dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the OS file system.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg. The YAML file is
// read first, then environment variables (after loading the .env file)
// override it. A missing file is not an error.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).Resolve(serviceName, lc)
	log := logger.Get("config")
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("config file not loaded", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn(".env file not loaded", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	v.AutomaticEnv()
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each nested key it could mean.
func bindEnv(v *viper.Viper, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands an environment key into the viper keys it may
// address, splitting at every underscore boundary:
//
//	HTTP_REQUEST_ID_HEADER -> http_request_id_header, http.request.id.header,
//	                          http.request_id_header, http.request.id_header
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return uniq(variants...)
}

func uniq(items ...string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
