package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydeploy/internal/config"
	"pydeploy/internal/runner"
)

func testConfig() *config.DeploymentConfig {
	return &config.DeploymentConfig{
		ProjectDir:  "/srv/cropadvisor",
		ServiceName: "cropadvisor",
		SocketPath:  "/srv/cropadvisor/cropadvisor.sock",
		VenvDir:     "/srv/cropadvisor/venv",
		EnvFile:     "/srv/cropadvisor/.env",
		WSGIApp:     "app:app",
		Supervision: config.SupervisionPolicy{
			User:            "deploy",
			Group:           "deploy",
			Workers:         3,
			TimeoutSec:      30,
			RestartDelaySec: 3,
			LimitNOFILE:     4096,
		},
	}
}

func TestRender_Directives(t *testing.T) {
	rendered, err := Render(testConfig())
	require.NoError(t, err)

	for _, directive := range []string{
		"User=deploy",
		"Group=deploy",
		"WorkingDirectory=/srv/cropadvisor",
		"EnvironmentFile=/srv/cropadvisor/.env",
		"RuntimeDirectory=cropadvisor",
		"ExecStart=/srv/cropadvisor/venv/bin/gunicorn --workers 3 --timeout 30 --bind unix:/srv/cropadvisor/cropadvisor.sock app:app",
		"Restart=on-failure",
		"RestartSec=3",
		"LimitNOFILE=4096",
		"WantedBy=multi-user.target",
	} {
		assert.Contains(t, rendered, directive)
	}
}

func TestInstall_HappyPath(t *testing.T) {
	sr := runner.NewScriptedRunner(runner.Result{
		Match:  "is-active",
		Output: "active\n",
	})

	err := NewInstaller(sr).Install(context.Background(), testConfig(), nil)
	require.NoError(t, err)

	assert.True(t, sr.Ran("install -m 0644"))
	assert.True(t, sr.Ran("/etc/systemd/system/cropadvisor.service"))
	assert.True(t, sr.Ran("systemctl daemon-reload"))
	assert.True(t, sr.Ran("systemctl restart cropadvisor"))
}

func TestInstall_PrivilegeDenied(t *testing.T) {
	sr := runner.NewScriptedRunner(runner.Result{
		Match: "install -m 0644",
		Err:   errors.New("sudo: a password is required"),
	})

	err := NewInstaller(sr).Install(context.Background(), testConfig(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSupervisionInstall)
	assert.False(t, sr.Ran("daemon-reload"), "no reload after a failed install")
}

func TestInstall_UnitNotActive(t *testing.T) {
	sr := runner.NewScriptedRunner(runner.Result{
		Match:  "is-active",
		Output: "failed\n",
	})

	err := NewInstaller(sr).Install(context.Background(), testConfig(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceStart)
	assert.Contains(t, err.Error(), "journalctl -u cropadvisor")
}
