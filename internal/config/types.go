package config

import "path/filepath"

// DeploymentConfig is resolved once at startup and treated as read-only by
// every pipeline step.
type DeploymentConfig struct {
	ProjectDir  string `yaml:"project_dir"`
	ServiceName string `yaml:"service_name"`
	SocketPath  string `yaml:"socket_path"`
	VenvDir     string `yaml:"venv_dir"`
	EnvFile     string `yaml:"env_file"`
	WSGIApp     string `yaml:"wsgi_app"`

	Supervision SupervisionPolicy `yaml:"supervision"`
	Proxy       ProxyPolicy       `yaml:"proxy"`

	// Secrets is the resolved secret mapping written to EnvFile. Keys are
	// the environment variable names the application reads.
	Secrets map[string]string `yaml:"-"`
}

// SupervisionPolicy controls the generated systemd unit.
type SupervisionPolicy struct {
	User            string `yaml:"user"`
	Group           string `yaml:"group"`
	Workers         int    `yaml:"workers"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	RestartDelaySec int    `yaml:"restart_delay_sec"`
	LimitNOFILE     int    `yaml:"limit_nofile"`
}

// ProxyPolicy controls the generated nginx site.
type ProxyPolicy struct {
	ServerName string `yaml:"server_name"`
	ListenPort int    `yaml:"listen_port"`
	StaticDir  string `yaml:"static_dir"`
	HealthPath string `yaml:"health_path"`
	User       string `yaml:"user"`
}

// UnitPath is the system location of the generated supervision unit.
func (dc *DeploymentConfig) UnitPath() string {
	return filepath.Join("/etc/systemd/system", dc.ServiceName+".service")
}

// SiteAvailablePath is the nginx sites-available location of the site.
func (dc *DeploymentConfig) SiteAvailablePath() string {
	return filepath.Join("/etc/nginx/sites-available", dc.ServiceName)
}

// SiteEnabledPath is the nginx sites-enabled location of the site link.
func (dc *DeploymentConfig) SiteEnabledPath() string {
	return filepath.Join("/etc/nginx/sites-enabled", dc.ServiceName)
}

// StaticRoot is the absolute static asset directory served by the proxy.
func (dc *DeploymentConfig) StaticRoot() string {
	return filepath.Join(dc.ProjectDir, dc.Proxy.StaticDir)
}

// GunicornPath is the gunicorn binary inside the virtualenv.
func (dc *DeploymentConfig) GunicornPath() string {
	return filepath.Join(dc.VenvDir, "bin", "gunicorn")
}
