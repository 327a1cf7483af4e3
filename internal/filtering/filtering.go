// Package filtering narrows the roster with deterministic predicates.
package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/roster"
)

// Filter represents a single filtering step applied to roster records.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, records []roster.EmployeeRecord) ([]roster.EmployeeRecord, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config holds the search criteria. Zero values leave the matching step a no-op.
type Config struct {
	Skills        []string
	MinExperience int
	Availability  string
	Department    string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// ParseSkills splits a comma-separated skill list, trimming and lower-casing
// each entry and dropping empty ones.
func ParseSkills(raw string) []string {
	skills := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// Default returns a fresh step sequence. Steps keep the criteria from Validate,
// so a sequence must not be shared between concurrent runs.
func Default() []Filter {
	return []Filter{
		NewSkills(),
		NewMinExperience(),
		NewAvailability(),
		NewDepartment(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the matching records.
// The input slice is never modified.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, records []roster.EmployeeRecord) ([]roster.EmployeeRecord, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := append(make([]roster.EmployeeRecord, 0, len(records)), records...)
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		current = next
	}

	return current, nil
}

// Search runs a fresh default sequence over records.
func Search(ctx context.Context, cfg *Config, records []roster.EmployeeRecord, logger *zap.Logger) ([]roster.EmployeeRecord, error) {
	return Run(ctx, cfg, Deps{Logger: logger}, Default(), records)
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the records matching pred together with step counts.
func keep(records []roster.EmployeeRecord, pred func(roster.EmployeeRecord) bool) ([]roster.EmployeeRecord, Step) {
	out := make([]roster.EmployeeRecord, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out, Step{Initial: len(records), Dropped: len(records) - len(out), Left: len(out)}
}

func unchanged(records []roster.EmployeeRecord) Step {
	return Step{Initial: len(records), Dropped: 0, Left: len(records)}
}

func names(records []roster.EmployeeRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}
