package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/roster"
)

// exactFilter keeps records whose field equals the configured value, ignoring case.
type exactFilter struct {
	name     string
	disabled bool
	reason   string
	value    string
	field    func(roster.EmployeeRecord) string
	option   func(*Config) string
}

// NewAvailability creates a filter on the availability status.
func NewAvailability() Filter {
	return &exactFilter{
		name:   "availability",
		field:  func(r roster.EmployeeRecord) string { return r.Availability },
		option: func(c *Config) string { return c.Availability },
	}
}

// NewDepartment creates a filter on the department. Records without a
// department never match.
func NewDepartment() Filter {
	return &exactFilter{
		name:   "department",
		field:  func(r roster.EmployeeRecord) string { return r.Department },
		option: func(c *Config) string { return c.Department },
	}
}

func (f *exactFilter) Name() string { return f.name }

func (f *exactFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *exactFilter) IsEnabled() bool { return !f.disabled }

func (f *exactFilter) Validate(cfg *Config) error {
	f.value = ""
	if cfg != nil {
		f.value = strings.TrimSpace(f.option(cfg))
	}
	return nil
}

func (f *exactFilter) Apply(_ context.Context, deps Deps, records []roster.EmployeeRecord) ([]roster.EmployeeRecord, Step, error) {
	if f.value == "" {
		return records, unchanged(records), nil
	}

	kept, step := keep(records, func(r roster.EmployeeRecord) bool {
		v := strings.TrimSpace(f.field(r))
		return v != "" && strings.EqualFold(v, f.value)
	})

	if deps.Logger != nil && step.Dropped > 0 {
		deps.Logger.Debug("excluding employees by "+f.name,
			zap.String(f.name, f.value),
			zap.Strings("employees_left", names(kept)),
		)
	}

	return kept, step, nil
}

func (f *exactFilter) Status() Status {
	details := map[string]string{}
	if f.value != "" {
		details[f.name] = f.value
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
