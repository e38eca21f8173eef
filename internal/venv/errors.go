package venv

import "errors"

var (
	ErrDependencyInstall = errors.New("dependency installation failed")
)
