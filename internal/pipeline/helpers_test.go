package pipeline

import (
	"pydeploy/internal/config"
)

func minimalConfig() *config.DeploymentConfig {
	return &config.DeploymentConfig{
		ProjectDir:  "/srv/app",
		ServiceName: "app",
		SocketPath:  "/srv/app/app.sock",
		VenvDir:     "/srv/app/venv",
		EnvFile:     "/srv/app/.env",
		WSGIApp:     "app:app",
		Proxy: config.ProxyPolicy{
			ListenPort: 80,
			HealthPath: "/healthz",
		},
	}
}
