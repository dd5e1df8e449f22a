// Package version reports what version of the application is running.
//
// Two sources are supported. Build metadata is embedded at compile time:
//
//	go build -ldflags "-X github.com/kbukum/apptemplate/version.Version=1.0.0"
//
// and a project manifest (manifest.json, or any YAML/TOML file with name and
// version keys) can be read at runtime with ReadManifest.
package version
