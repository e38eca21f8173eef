package config

import "errors"

var (
	ErrMissingSecret   = errors.New("required secret missing")
	ErrManifestInvalid = errors.New("invalid deployment manifest")
)
