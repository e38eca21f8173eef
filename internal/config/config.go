package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"pydeploy/internal/logger"
)

const (
	manifestName = "pydeploy"

	// PrimarySecretKey is the one secret that may arrive as a CLI argument.
	PrimarySecretKey = "GEMINI_API_KEY"

	keyringService = "pydeploy"
)

// requiredSecrets are the environment keys the application refuses to boot
// without. PrimarySecretKey has extra resolution sources (argument, keyring).
var requiredSecrets = []string{"USDA_API_KEY", "WEATHER_API_KEY", PrimarySecretKey}

var cfgLogs = logger.PackageLogger("🔧 CONFIG")

// Resolve builds the immutable DeploymentConfig for projectDir. primaryArg
// is the optional positional CLI argument carrying the primary secret; the
// environment variable of the same name and the OS keyring are consulted as
// fallbacks, in that order.
func Resolve(projectDir, primaryArg string) (*DeploymentConfig, error) {
	return resolve(projectDir, primaryArg, true)
}

// ResolveForInspection resolves paths and policies without enforcing secret
// presence. Used by read-only commands that inspect a host; the deploy
// pipeline always goes through Resolve.
func ResolveForInspection(projectDir string) (*DeploymentConfig, error) {
	return resolve(projectDir, "", false)
}

func resolve(projectDir, primaryArg string, withSecrets bool) (*DeploymentConfig, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(manifestName)
	v.SetConfigType("yaml")
	v.AddConfigPath(abs)
	v.SetEnvPrefix("PYDEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	name := filepath.Base(abs)
	v.SetDefault("service_name", name)
	v.SetDefault("socket_path", filepath.Join(abs, name+".sock"))
	v.SetDefault("venv_dir", filepath.Join(abs, "venv"))
	v.SetDefault("env_file", filepath.Join(abs, ".env"))
	v.SetDefault("wsgi_app", "app:app")
	v.SetDefault("supervision.workers", 3)
	v.SetDefault("supervision.timeout_sec", 30)
	v.SetDefault("supervision.restart_delay_sec", 3)
	v.SetDefault("supervision.limit_nofile", 4096)
	v.SetDefault("proxy.server_name", "_")
	v.SetDefault("proxy.listen_port", 80)
	v.SetDefault("proxy.static_dir", "static")
	v.SetDefault("proxy.health_path", "/healthz")
	v.SetDefault("proxy.user", "www-data")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
		}
		cfgLogs.Debug("no %s.yml manifest in %s, using defaults", manifestName, abs)
	} else {
		cfgLogs.Info("loaded manifest %s", v.ConfigFileUsed())
	}

	cfg := &DeploymentConfig{
		ProjectDir:  abs,
		ServiceName: v.GetString("service_name"),
		SocketPath:  v.GetString("socket_path"),
		VenvDir:     v.GetString("venv_dir"),
		EnvFile:     v.GetString("env_file"),
		WSGIApp:     v.GetString("wsgi_app"),
		Supervision: SupervisionPolicy{
			User:            v.GetString("supervision.user"),
			Group:           v.GetString("supervision.group"),
			Workers:         v.GetInt("supervision.workers"),
			TimeoutSec:      v.GetInt("supervision.timeout_sec"),
			RestartDelaySec: v.GetInt("supervision.restart_delay_sec"),
			LimitNOFILE:     v.GetInt("supervision.limit_nofile"),
		},
		Proxy: ProxyPolicy{
			ServerName: v.GetString("proxy.server_name"),
			ListenPort: v.GetInt("proxy.listen_port"),
			StaticDir:  v.GetString("proxy.static_dir"),
			HealthPath: v.GetString("proxy.health_path"),
			User:       v.GetString("proxy.user"),
		},
		Secrets: map[string]string{},
	}

	if cfg.Supervision.User == "" {
		if current, err := user.Current(); err == nil {
			cfg.Supervision.User = current.Username
			cfg.Supervision.Group = current.Username
		}
	}
	if cfg.Supervision.Group == "" {
		cfg.Supervision.Group = cfg.Supervision.User
	}

	if withSecrets {
		if err := resolveSecrets(cfg, v, primaryArg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func resolveSecrets(cfg *DeploymentConfig, v *viper.Viper, primaryArg string) error {
	for _, key := range requiredSecrets {
		value := os.Getenv(key)
		if value == "" {
			value = v.GetString("secrets." + strings.ToLower(key))
		}
		if key == PrimarySecretKey {
			if primaryArg != "" {
				value = primaryArg
			}
			if value == "" {
				if stored, err := keyring.Get(keyringService, key); err == nil {
					cfgLogs.Info("resolved %s from system keyring", key)
					value = stored
				}
			}
		}
		if value == "" {
			return fmt.Errorf("%w: %s not provided via argument, environment or manifest", ErrMissingSecret, key)
		}
		cfg.Secrets[key] = value
	}
	return nil
}
