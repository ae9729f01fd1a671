package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ConfigError lists every problem found in a configuration, keyed by the
// same dotted names used in config.yaml and WARERA_* variables
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return strings.Join(e.Problems, "; ")
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("hostport", func(fl validator.FieldLevel) bool {
		_, port, err := net.SplitHostPort(fl.Field().String())
		if err != nil {
			return false
		}
		n, err := strconv.Atoi(port)
		return err == nil && n >= 0 && n <= 65535
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		pool := sl.Current().Interface().(PoolConfig)
		if pool.MaxIdle > pool.MaxOpen {
			sl.ReportError(pool.MaxIdle, "max_idle", "MaxIdle", "ltefield", "max_open")
		}
	}, PoolConfig{})

	return v
}

// ValidateConfig checks cfg against its validate tags and cross-field rules
func ValidateConfig(cfg *Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s %s", configKey(fe.Namespace()), describe(fe)))
	}
	return &ConfigError{Problems: problems}
}

// configKey drops the root type name: "Config.economy.max_level" -> "economy.max_level"
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s", snakeCase(fe.Param()))
	case "ltefield":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "url":
		return fmt.Sprintf("must be an absolute URL, got %q", fmt.Sprint(fe.Value()))
	case "hostport":
		return fmt.Sprintf("must be host:port, got %q", fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// snakeCase turns a Go field name into its config key: MinLevel -> min_level
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
