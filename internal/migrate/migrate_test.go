package migrate

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_NamedByVersion(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	pattern := regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)
	for _, name := range names {
		assert.Regexp(t, pattern, name)
	}
}

func TestRun_RequiresDB(t *testing.T) {
	err := Run(context.Background(), nil, "up")
	assert.EqualError(t, err, "db is required")
}

func TestMigrateToVersion_InvalidVersion(t *testing.T) {
	err := MigrateToVersion(context.Background(), nil, "latest")
	assert.ErrorContains(t, err, "invalid version")
}
