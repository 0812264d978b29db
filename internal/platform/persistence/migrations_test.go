package persistence

import (
	"fmt"
	"os"
	"testing"

	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_InputValidation(t *testing.T) {
	t.Run("EmptyMigrationsPath", func(t *testing.T) {
		err := RunMigrations("postgres://test", "")
		assert.Error(t, err)
		assert.EqualError(t, err, "migrations path cannot be empty")
	})

	t.Run("EmptyDatabaseURL", func(t *testing.T) {
		err := RunMigrations("", "migrations/postgres")
		assert.Error(t, err)
		assert.EqualError(t, err, "database URL cannot be empty")
	})

	// Only testing input validation since a full migration run needs a live database
}

// A request that passes Validate must also fit the columns, otherwise a valid
// submission dies inside the insert instead of at the validation layer.
func TestMigrationColumnBoundsMatchRequestLimits(t *testing.T) {
	schema, err := os.ReadFile("../../../migrations/postgres/000001_create_pix_transactions.up.sql")
	require.NoError(t, err)

	ddl := string(schema)
	assert.Contains(t, ddl, fmt.Sprintf("pix_key VARCHAR(%d)", shared.MaxPixKeyLength))
	assert.Contains(t, ddl, fmt.Sprintf("description VARCHAR(%d)", shared.MaxDescriptionLength))
}
