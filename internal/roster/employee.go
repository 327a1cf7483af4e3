package roster

import "strings"

const (
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"

	// Unknown is rendered in place of absent optional fields.
	Unknown = "Unknown"
)

// EmployeeRecord is a single roster entry. Optional fields are empty when absent.
type EmployeeRecord struct {
	ID              int      `json:"id" yaml:"id" mapstructure:"id" validate:"gte=0"`
	Name            string   `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Skills          []string `json:"skills" yaml:"skills" mapstructure:"skills" validate:"dive,required"`
	ExperienceYears int      `json:"experience_years" yaml:"experience_years" mapstructure:"experience_years" validate:"gte=0"`
	Projects        []string `json:"projects" yaml:"projects" mapstructure:"projects" validate:"dive,required"`
	Availability    string   `json:"availability" yaml:"availability" mapstructure:"availability" validate:"required"`
	Email           string   `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
	Department      string   `json:"department,omitempty" yaml:"department,omitempty" mapstructure:"department"`
	Location        string   `json:"location,omitempty" yaml:"location,omitempty" mapstructure:"location"`
}

// IsAvailable reports whether the availability status is "available", ignoring case.
func (e EmployeeRecord) IsAvailable() bool {
	return strings.EqualFold(strings.TrimSpace(e.Availability), AvailabilityAvailable)
}

// HasSkill reports whether the record lists the skill, ignoring case and surrounding spaces.
func (e EmployeeRecord) HasSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return false
	}
	for _, s := range e.Skills {
		if strings.EqualFold(strings.TrimSpace(s), skill) {
			return true
		}
	}
	return false
}

// DepartmentOrUnknown returns the department or Unknown when it is not set.
func (e EmployeeRecord) DepartmentOrUnknown() string {
	return orUnknown(e.Department)
}

// LocationOrUnknown returns the location or Unknown when it is not set.
func (e EmployeeRecord) LocationOrUnknown() string {
	return orUnknown(e.Location)
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return Unknown
	}
	return v
}
