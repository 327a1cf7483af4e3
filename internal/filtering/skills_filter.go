package filtering

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/roster"
)

type skillsFilter struct {
	disabled bool
	reason   string
	skills   []string
}

// NewSkills creates a filter that keeps records having any of the requested skills.
func NewSkills() Filter {
	return &skillsFilter{}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *skillsFilter) IsEnabled() bool { return !f.disabled }

func (f *skillsFilter) Validate(cfg *Config) error {
	f.skills = nil
	if cfg == nil {
		return nil
	}
	for _, s := range cfg.Skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			f.skills = append(f.skills, s)
		}
	}
	if len(cfg.Skills) > 0 && len(f.skills) == 0 {
		return errors.New("skills list contains only blank entries")
	}
	return nil
}

func (f *skillsFilter) Apply(_ context.Context, deps Deps, records []roster.EmployeeRecord) ([]roster.EmployeeRecord, Step, error) {
	if len(f.skills) == 0 {
		return records, unchanged(records), nil
	}

	kept, step := keep(records, func(r roster.EmployeeRecord) bool {
		for _, s := range f.skills {
			if r.HasSkill(s) {
				return true
			}
		}
		return false
	})

	if deps.Logger != nil && step.Dropped > 0 {
		deps.Logger.Debug("excluding employees without requested skills",
			zap.Strings("skills", f.skills),
			zap.Int("employees_left", step.Left),
		)
	}

	return kept, step, nil
}

func (f *skillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
