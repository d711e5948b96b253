package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// dryRunDB builds queries without a live connection so tests can
// inspect the generated SQL.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func countMatchingSQL(db *gorm.DB, examID uint, keys repositories.IdentityKeys) (string, []interface{}) {
	var count int64
	tx := db.Model(&models.ExamResult{}).
		Where("exam_id = ?", examID).
		Where(weakKeyMatch(db, keys)).
		Count(&count)
	return tx.Statement.SQL.String(), tx.Statement.Vars
}

func TestWeakKeyMatch(t *testing.T) {
	db := dryRunDB(t)

	t.Run("all three keys OR in one group", func(t *testing.T) {
		sql, vars := countMatchingSQL(db, 1, repositories.IdentityKeys{
			UserID:   "u1",
			Username: "alice",
			FullName: "Alice Doe",
		})

		assert.Contains(t, sql, "exam_id = ? AND (student_id = ? OR student_id = ? OR student_name = ?)")
		assert.Equal(t, []interface{}{uint(1), "u1", "alice", "Alice Doe"}, vars)
	})

	t.Run("empty keys are skipped, not matched against empty columns", func(t *testing.T) {
		sql, vars := countMatchingSQL(db, 1, repositories.IdentityKeys{
			UserID:   "u1",
			FullName: "Alice Doe",
		})

		assert.Contains(t, sql, "exam_id = ? AND (student_id = ? OR student_name = ?)")
		assert.NotContains(t, sql, "student_id = ? OR student_id = ?")
		assert.Equal(t, []interface{}{uint(1), "u1", "Alice Doe"}, vars)
	})

	t.Run("single key needs no OR", func(t *testing.T) {
		sql, vars := countMatchingSQL(db, 1, repositories.IdentityKeys{
			Username: "walk-in-7",
		})

		assert.Contains(t, sql, "student_id = ?")
		assert.NotContains(t, sql, " OR ")
		assert.Equal(t, []interface{}{uint(1), "walk-in-7"}, vars)
	})
}

func TestResultPostgres_CountMatching_EmptyKeys(t *testing.T) {
	repo := NewResultPostgres(dryRunDB(t))

	count, err := repo.CountMatching(context.Background(), 1, repositories.IdentityKeys{})

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}
