package roster

import (
	"strconv"
	"strings"
)

// Projection renders the record into the text used as embedding input.
// Field order and labels are fixed so the same record always produces the same string.
func Projection(e EmployeeRecord) string {
	var b strings.Builder
	line := func(label, value string) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
	}

	line("Name", strings.TrimSpace(e.Name))
	line("Skills", JoinList(e.Skills))
	line("Experience", strconv.Itoa(e.ExperienceYears)+" years")
	line("Projects", JoinList(e.Projects))
	line("Department", e.DepartmentOrUnknown())
	line("Location", e.LocationOrUnknown())
	line("Availability", strings.TrimSpace(e.Availability))

	return b.String()
}

// JoinList joins non-empty trimmed items with ", ".
func JoinList(items []string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, ", ")
}
