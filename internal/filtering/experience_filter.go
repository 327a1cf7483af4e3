package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/roster"
)

type minExperienceFilter struct {
	disabled bool
	reason   string
	years    int
}

// NewMinExperience creates a filter that keeps records with at least the configured years.
func NewMinExperience() Filter {
	return &minExperienceFilter{}
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minExperienceFilter) IsEnabled() bool { return !f.disabled }

func (f *minExperienceFilter) Validate(cfg *Config) error {
	f.years = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinExperience < 0 {
		return fmt.Errorf("minimum experience must not be negative, got %d", cfg.MinExperience)
	}
	f.years = cfg.MinExperience
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, deps Deps, records []roster.EmployeeRecord) ([]roster.EmployeeRecord, Step, error) {
	if f.years == 0 {
		return records, unchanged(records), nil
	}

	kept, step := keep(records, func(r roster.EmployeeRecord) bool {
		return r.ExperienceYears >= f.years
	})

	if deps.Logger != nil && step.Dropped > 0 {
		deps.Logger.Debug("excluding employees below experience threshold",
			zap.Int("min_experience", f.years),
			zap.Int("employees_left", step.Left),
		)
	}

	return kept, step, nil
}

func (f *minExperienceFilter) Status() Status {
	details := map[string]string{}
	if f.years > 0 {
		details["min_experience"] = strconv.Itoa(f.years)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
