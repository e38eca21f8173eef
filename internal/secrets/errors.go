package secrets

import "errors"

var (
	ErrSecretWrite  = errors.New("secret write failed")
	ErrSecretVerify = errors.New("secret verification failed")
)
