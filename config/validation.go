package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireJWTSecret bool
	RequirePostgres  bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {RequireJWTSecret: true},
		Test:        {RequireJWTSecret: false},
		CI:          {RequireJWTSecret: true},
		Production:  {RequireJWTSecret: true, RequirePostgres: true},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var problems []ValidationError

	if reqs.RequireJWTSecret && cfg.JWTSecret == "" {
		problems = append(problems, ValidationError{Field: "jwt_secret", Message: "is required"})
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DBHost == "" {
			problems = append(problems, ValidationError{Field: "DB_HOST", Message: "is required for postgres"})
		}
		if cfg.DBName == "" {
			problems = append(problems, ValidationError{Field: "DB_NAME", Message: "is required for postgres"})
		}
		if cfg.DBUser == "" {
			problems = append(problems, ValidationError{Field: "db_user", Message: "is required for postgres"})
		}
	case "sqlite":
		if reqs.RequirePostgres {
			problems = append(problems, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("sqlite is not allowed in %s", env)})
		}
	default:
		problems = append(problems, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DatabaseDriver)})
	}

	switch cfg.PlannerProvider {
	case "openai", "none":
	case "gemini":
		if env == Production && cfg.GeminiAPIKey == "" {
			problems = append(problems, ValidationError{Field: "gemini_api_key", Message: "is required when PLANNER_PROVIDER=gemini"})
		}
	default:
		problems = append(problems, ValidationError{Field: "PLANNER_PROVIDER", Message: fmt.Sprintf("unsupported provider %q", cfg.PlannerProvider)})
	}
	if cfg.PlannerProvider == "openai" && env == Production && cfg.PlannerAPIKey == "" {
		problems = append(problems, ValidationError{Field: "planner_api_key", Message: "is required when PLANNER_PROVIDER=openai"})
	}

	if cfg.RolloverWorkers < 1 {
		problems = append(problems, ValidationError{Field: "ROLLOVER_WORKERS", Message: "must be at least 1"})
	}
	if cfg.MaxViewDates < 1 {
		problems = append(problems, ValidationError{Field: "MAX_VIEW_DATES", Message: "must be at least 1"})
	}

	if len(problems) > 0 {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			msgs = append(msgs, p.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}
