package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/apptemplate/errors"
)

type sample struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode     string `mapstructure:"mode" validate:"omitempty,oneof=prod dev"`
	UserName string `validate:"max=5"`
}

func TestValidateValid(t *testing.T) {
	if err := Validate(sample{Host: "localhost", Port: 7687, Mode: "dev"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	err := Validate(sample{Port: 70000, Mode: "qa", UserName: "much-too-long"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected []FieldError details, got %T", appErr.Details["fields"])
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"host":      "is required",
		"port":      "must be at most 65535",
		"mode":      "must be one of: prod dev",
		"user_name": "must be at most 5 characters",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s: expected %q, got %q", field, msg, got[field])
		}
	}
	if !strings.Contains(err.Error(), "host: is required") {
		t.Errorf("expected message to list fields, got %q", err.Error())
	}
}

func TestValidateNonStruct(t *testing.T) {
	if err := Validate(42); err == nil {
		t.Error("expected error for non-struct input")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Port":     "port",
		"UserName": "user_name",
		"already":  "already",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
