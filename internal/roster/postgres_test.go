package roster

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSelectQuerySanitizesTable(t *testing.T) {
	assert.Contains(t, selectQuery(""), `FROM "employees"`)
	assert.Contains(t, selectQuery("hr.staff"), `FROM "hr"."staff"`)
	assert.Contains(t, selectQuery(`x"; DROP TABLE y; --`), `FROM "x""; DROP TABLE y; --"`)
}

func TestPostgresSourceRequiresURL(t *testing.T) {
	_, err := (&PostgresSource{}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not configured"))
}

func TestPostgresSourceIntegration(t *testing.T) {
	url := os.Getenv("HR_ASSISTANT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HR_ASSISTANT_TEST_DATABASE_URL is not set")
	}

	src := &PostgresSource{DatabaseURL: url, Logger: zap.NewNop()}
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	for _, r := range records {
		assert.NoError(t, Validate(r))
	}
}

func TestAdmitRowsSkipsDuplicatesAndInvalid(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	rows := []EmployeeRecord{
		{ID: 1, Name: "Alice", Availability: "available"},
		{ID: 2, Name: "", Availability: "busy"},
		{ID: 1, Name: "Alice Again", Availability: "busy"},
		{ID: 3, Name: "Carol", Availability: "busy"},
	}

	got := admitRows(rows, zap.New(core))
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, "Carol", got[1].Name)

	dups := observed.FilterMessage("skipping employee record with duplicate id").All()
	require.Len(t, dups, 1)
	assert.Equal(t, int64(2), dups[0].ContextMap()["row"])
	assert.Equal(t, 1, observed.FilterMessage("skipping invalid employee record").Len())
}
