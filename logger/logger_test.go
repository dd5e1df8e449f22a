package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNew(t *testing.T) {
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "my-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "my-service" {
		t.Errorf("expected service 'my-service', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("handler")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l := NewDefault("test")
	if fl := l.WithFields(map[string]interface{}{"key": "value"}); fl == nil {
		t.Fatal("expected non-nil logger")
	}
	if el := l.WithError(errors.New("bad")); el == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestInit(t *testing.T) {
	Init(Config{Level: "info", Format: "console", Output: "stdout"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Init(Config{Level: "debug", Format: "console", Output: "stdout"})
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
	Trace()
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if cfg.TimeFormat != "2006-01-02 15:04:05" {
		t.Errorf("unexpected time format %q", cfg.TimeFormat)
	}
	if cfg.Dir != "logs" {
		t.Errorf("expected dir 'logs', got %q", cfg.Dir)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
		{"file without name", Config{Level: "info", Format: "json", Files: []FileSink{{Level: "error"}}}, true},
		{"file with bad level", Config{Level: "info", Format: "json", Files: []FileSink{{Name: "x.log", Level: "loud"}}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPresetConfig(t *testing.T) {
	prod, err := PresetConfig(SetupProduction)
	if err != nil {
		t.Fatal(err)
	}
	if prod.Level != "info" || !prod.NoColor || len(prod.Files) != 0 {
		t.Errorf("unexpected prod preset: %+v", prod)
	}

	dev, err := PresetConfig(SetupDevelopment)
	if err != nil {
		t.Fatal(err)
	}
	if dev.Level != "debug" || dev.NoColor {
		t.Errorf("unexpected dev preset: %+v", dev)
	}
	if len(dev.Files) != 2 || dev.Files[0].Name != "error.log" || dev.Files[1].Name != "all.log" {
		t.Errorf("unexpected dev file sinks: %+v", dev.Files)
	}

	if _, err := PresetConfig("staging"); !errors.Is(err, ErrLogSetupUnsupported) {
		t.Errorf("expected ErrLogSetupUnsupported, got %v", err)
	}
}

func TestSetupFromEnv(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		t.Setenv(SetupEnvVar, "")
		if _, err := SetupFromEnv(); !errors.Is(err, ErrLogSetupUndefined) {
			t.Errorf("expected ErrLogSetupUndefined, got %v", err)
		}
	})
	t.Run("blank", func(t *testing.T) {
		t.Setenv(SetupEnvVar, "   ")
		if _, err := SetupFromEnv(); !errors.Is(err, ErrLogSetupUndefined) {
			t.Errorf("expected ErrLogSetupUndefined, got %v", err)
		}
	})
	t.Run("prod", func(t *testing.T) {
		t.Setenv(SetupEnvVar, "prod")
		cfg, err := SetupFromEnv()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Level != "info" {
			t.Errorf("expected info, got %q", cfg.Level)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		t.Setenv(SetupEnvVar, "qa")
		if _, err := SetupFromEnv(); !errors.Is(err, ErrLogSetupUnsupported) {
			t.Errorf("expected ErrLogSetupUnsupported, got %v", err)
		}
	})
}

func TestFileSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Level:   "debug",
		Format:  "console",
		Output:  "stderr",
		NoColor: true,
		Dir:     dir,
		Files: []FileSink{
			{Name: "error.log", Level: "error"},
			{Name: "all.log"},
		},
	}
	cfg.ApplyDefaults()
	l := New(cfg, "sink-test")
	l.Info("routine message")
	l.Error("broken message")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	all, err := os.ReadFile(filepath.Join(dir, "all.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(all), "routine message") || !strings.Contains(string(all), "broken message") {
		t.Errorf("all.log missing entries:\n%s", all)
	}
	if strings.Contains(string(all), "\x1b[") {
		t.Error("file sinks must not contain color codes")
	}

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(errs), "routine message") {
		t.Error("error.log should not contain info entries")
	}
	if !strings.Contains(string(errs), "broken message") {
		t.Errorf("error.log missing error entry:\n%s", errs)
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
}

func TestGetFollowsGlobalLogger(t *testing.T) {
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	before := Get("follower")
	if Get("follower") != before {
		t.Error("expected derived logger to be cached")
	}

	Init(Config{Level: "debug", Format: "json", Output: "stdout"})
	if Get("follower") == before {
		t.Error("expected derived logger to be rebuilt after Init")
	}

	pinned := NewDefault("pinned")
	Register("pinned", pinned)
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	if Get("pinned") != pinned {
		t.Error("registered loggers must survive Init")
	}
}

func TestGetUnregistered(t *testing.T) {
	// Getting an unregistered name should return global logger with component tag
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestRegisterDefaults(t *testing.T) {
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	RegisterDefaults("pipeline", "resilience")

	for _, name := range []string{"pipeline", "resilience"} {
		if Get(name) == nil {
			t.Errorf("expected non-nil logger for %q", name)
		}
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{
			"key-value pairs",
			[]interface{}{"op", "save", "id", 42},
			map[string]interface{}{"op": "save", "id": 42},
		},
		{
			"odd number of args",
			[]interface{}{"op", "save", "trailing"},
			map[string]interface{}{"op": "save"},
		},
		{
			"non-string key skipped",
			[]interface{}{123, "value", "key", "val"},
			map[string]interface{}{"key": "val"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Errorf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	fields := ErrorFields("create-user", fmt.Errorf("something broke"))
	if fields[FieldOperation] != "create-user" {
		t.Errorf("expected operation 'create-user', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "something broke" {
		t.Errorf("expected error 'something broke', got %v", fields[FieldError])
	}

	fields = DurationFields("query", 150*time.Millisecond)
	if fields[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", fields[FieldDuration])
	}
}
