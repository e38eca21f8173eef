package systemd

import "errors"

var (
	ErrSupervisionInstall = errors.New("supervision unit install failed")
	ErrServiceStart       = errors.New("service failed to start")
)
