package roster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const rosterJSON = `{
  "employees": [
    {
      "id": 1,
      "name": "Alice Johnson",
      "skills": ["Python", "React", "AWS"],
      "experience_years": 5,
      "projects": ["E-commerce Platform", "Healthcare Dashboard"],
      "availability": "available",
      "email": "alice@company.com",
      "department": "Engineering",
      "location": "San Francisco"
    },
    {
      "id": 2,
      "name": "Bob Smith",
      "skills": ["Java", "Spring Boot"],
      "experience_years": 8,
      "projects": ["Banking System"],
      "availability": "busy"
    },
    {
      "id": 3,
      "skills": ["Go"],
      "experience_years": 2,
      "projects": [],
      "availability": "available"
    },
    {
      "id": 2,
      "name": "Duplicate Bob",
      "skills": [],
      "experience_years": 1,
      "projects": [],
      "availability": "busy"
    },
    {
      "id": 4,
      "name": "Negative",
      "skills": [],
      "experience_years": -1,
      "projects": [],
      "availability": "busy"
    },
    {
      "id": 5,
      "name": "Typed Wrong",
      "skills": "Go",
      "experience_years": 1,
      "projects": [],
      "availability": "busy"
    }
  ]
}`

const rosterYAML = `employees:
  - id: 10
    name: Grace Hopper
    skills: [COBOL, Compilers]
    experience_years: 40
    projects: [UNIVAC]
    availability: Available
    department: Research
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileJSONSkipsInvalidRecords(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	path := writeFile(t, "employees.json", rosterJSON)

	records, err := LoadFile(path, zap.New(core))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Alice Johnson", records[0].Name)
	assert.Equal(t, []string{"Python", "React", "AWS"}, records[0].Skills)
	assert.Equal(t, 5, records[0].ExperienceYears)
	assert.Equal(t, "Engineering", records[0].Department)
	assert.Equal(t, "Bob Smith", records[1].Name)
	assert.Empty(t, records[1].Department)

	// missing name, duplicate id, negative experience, wrong skills type
	assert.Equal(t, 4, observed.Len())
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "employees.yaml", rosterYAML)

	records, err := LoadFile(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 40, records[0].ExperienceYears)
	assert.True(t, records[0].IsAvailable())
}

func TestLoadFileRejectsInvalidDocument(t *testing.T) {
	path := writeFile(t, "employees.json", `{"people": []}`)

	_, err := LoadFile(path, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "employees.csv", "id,name")

	_, err := LoadFile(path, zap.NewNop())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestOpenDegradesToEmptyRoster(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	store := Open(context.Background(), &FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, zap.New(core))
	require.NotNil(t, store)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1, observed.FilterMessage("using an empty roster").Len())
}

func TestOpenLoadsFile(t *testing.T) {
	path := writeFile(t, "employees.json", rosterJSON)

	store := Open(context.Background(), &FileSource{Path: path}, nil)
	assert.Equal(t, 2, store.Len())
}

func TestDecodeBareList(t *testing.T) {
	doc := []any{
		map[string]any{
			"id":               float64(1),
			"name":             "Alice",
			"skills":           []any{"Python", "ML"},
			"experience_years": float64(5),
			"projects":         []any{"Health AI"},
			"availability":     "available",
		},
	}

	records, err := Decode(doc, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Python", "ML"}, records[0].Skills)

	records, err = Decode(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = Decode("employees", nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidateEmail(t *testing.T) {
	record := EmployeeRecord{Name: "Alice", Availability: "available", Email: "not-an-email"}
	assert.Error(t, Validate(record))

	record.Email = ""
	assert.NoError(t, Validate(record))
}

func TestDecodeRejectsFractionalNumbers(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	record := func(id, years any) map[string]any {
		return map[string]any{
			"id":               id,
			"name":             "Employee",
			"skills":           []any{"Go"},
			"experience_years": years,
			"projects":         []any{},
			"availability":     "available",
		}
	}

	doc := []any{
		record(1.5, float64(3)),
		record(float64(2), 5.9),
		record(float64(3), float64(4)),
		record(4, 7),
	}

	records, err := Decode(doc, zap.New(core))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records[0].ID)
	assert.Equal(t, 4, records[0].ExperienceYears)
	assert.Equal(t, 4, records[1].ID)
	assert.Equal(t, 7, records[1].ExperienceYears)
	assert.Equal(t, 2, observed.FilterMessage("skipping malformed employee record").Len())
}
