package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file operations the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when given, otherwise the first
// existing candidate from the standard search locations.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.firstExisting(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.firstExisting(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, prefix := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", prefix, serviceName))
	}
	return append(paths, "./config/config.yml", "./config.yml")
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, prefix := range []string{".", "..", "../.."} {
			paths = append(paths, fmt.Sprintf("%s/cmd/%s/%s", prefix, serviceName, name))
		}
		for _, prefix := range []string{".", "..", "../.."} {
			paths = append(paths, fmt.Sprintf("%s/%s", prefix, name))
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
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

// LoadConfig loads configuration for a service into cfg. A missing config
// file is not an error; an unreadable one is.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	// .env values must be in the process environment before binding.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each nested key variant of KEY.
// A variant that names an existing section is skipped so a stray variable
// cannot replace a whole map with a scalar.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			if len(v.GetStringMap(variant)) > 0 {
				continue
			}
			v.Set(variant, value)
		}
	}
}

// envKeyVariants returns the dotted key variants an environment variable
// may address. AUTH_JWT_ACCESS_TOKEN_TTL yields, among others,
// auth.jwt.access_token_ttl and auth.jwt.access.token.ttl.
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	// Every split point into nested prefix and snake_case leaf.
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return out
}
