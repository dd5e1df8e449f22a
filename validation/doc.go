// Package validation validates configuration structs with struct tags
// (go-playground/validator).
//
//	type Config struct {
//	    Port int `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as an errors.AppError with code INVALID_INPUT whose
// "fields" detail lists every offending field by its mapstructure key.
package validation
