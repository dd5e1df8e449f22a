package version

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kbukum/apptemplate/errors"
	"github.com/kbukum/apptemplate/logger"
)

// DefaultManifest is the manifest file read when no path is given.
const DefaultManifest = "manifest.json"

// Manifest holds the identity fields of a project manifest file.
type Manifest struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ReadManifest reads name and version from a JSON, YAML or TOML manifest.
// The format follows the file extension.
//
// A missing file yields a NOT_FOUND error, an unparsable one INVALID_FORMAT,
// and a manifest without a version MISSING_FIELD. Failures are logged before
// they are returned.
func ReadManifest(path string) (*Manifest, error) {
	path = orDefault(path)
	m, err := readManifest(path)
	if err != nil {
		log := logger.Get("version")
		log.Error("Could not read version", map[string]interface{}{
			"path":            path,
			logger.FieldError: err.Error(),
		})
		log.Trace()
		return nil, err
	}
	return m, nil
}

func readManifest(path string) (*Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFound("manifest", path).WithCause(err)
		}
		return nil, errors.Internal(err).WithDetail("path", path)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.InvalidFormat("manifest", "json, yaml or toml").
			WithCause(err).
			WithDetail("path", path)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, errors.InvalidFormat("manifest", "name and version strings").
			WithCause(err).
			WithDetail("path", path)
	}
	m.Version = strings.TrimSpace(m.Version)
	if m.Version == "" {
		return nil, errors.MissingField("version").WithDetail("path", path)
	}
	return &m, nil
}

// Resolve returns the manifest version at path when one can be read and the
// build version otherwise.
func Resolve(path string) string {
	if m, err := readManifest(orDefault(path)); err == nil {
		return m.Version
	}
	return Version
}

func orDefault(path string) string {
	if path == "" {
		return DefaultManifest
	}
	return path
}
