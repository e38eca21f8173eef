package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
)

var secretLogs = logger.PackageLogger("🔑 SECRETS")

// FileMode is the required permission for the secrets file: owner
// read/write only.
const FileMode = os.FileMode(0o600)

// Bundle is a secret mapping bound to its target file.
type Bundle struct {
	Path   string
	Values map[string]string
}

// BundleFromConfig binds the resolved secret mapping to the env-file path.
func BundleFromConfig(cfg *config.DeploymentConfig) Bundle {
	return Bundle{Path: cfg.EnvFile, Values: cfg.Secrets}
}

// Write renders the bundle as KEY="value" lines and installs it at
// bundle.Path with owner-only permissions. An existing file is overwritten
// unconditionally; that is documented behavior, so it logs a warning rather
// than failing. The write goes through a temp file and rename so a failure
// never leaves a partial secrets file behind.
func Write(bundle Bundle) error {
	if _, err := os.Stat(bundle.Path); err == nil {
		secretLogs.Warn("secrets file %s already exists, overwriting", bundle.Path)
	}

	keys := make([]string, 0, len(bundle.Values))
	for k := range bundle.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%q\n", k, bundle.Values[k])
	}

	dir := filepath.Dir(bundle.Path)
	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSecretWrite, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrSecretWrite, err)
	}
	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrSecretWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSecretWrite, err)
	}
	if err := os.Rename(tmp.Name(), bundle.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrSecretWrite, err)
	}

	if err := verify(bundle); err != nil {
		return err
	}

	secretLogs.Success("wrote %d secrets to %s", len(keys), bundle.Path)
	return nil
}

// verify re-parses the written file and confirms every key round-trips.
func verify(bundle Bundle) error {
	parsed, err := godotenv.Read(bundle.Path)
	if err != nil {
		return fmt.Errorf("%w: re-reading %s: %v", ErrSecretVerify, bundle.Path, err)
	}
	for k, v := range bundle.Values {
		got, ok := parsed[k]
		if !ok {
			return fmt.Errorf("%w: key %s missing after write", ErrSecretVerify, k)
		}
		if got != v {
			return fmt.Errorf("%w: key %s did not round-trip", ErrSecretVerify, k)
		}
	}
	return nil
}
