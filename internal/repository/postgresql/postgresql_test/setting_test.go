package pgtest

import (
	"context"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepository(t *testing.T) {
	db := NewTestDatabase(t)
	TruncateAllTables(t, db)
	ctx := context.Background()
	repo := postgresql.NewSettingRepository(db)

	seeded, err := repo.Get(ctx, setting.KeyWorkHoursStart)
	require.NoError(t, err)
	assert.Equal(t, "09:00", seeded.Value)
	require.NotNil(t, seeded.Description)

	admin := "admin-1"
	updated, err := repo.Upsert(ctx, setting.Setting{Key: setting.KeyWorkHoursStart, Value: "08:30", UpdatedBy: &admin})
	require.NoError(t, err)
	assert.Equal(t, "08:30", updated.Value)
	assert.Equal(t, seeded.Description, updated.Description, "nil description keeps the stored one")
	assert.Equal(t, &admin, updated.UpdatedBy)

	_, err = repo.Upsert(ctx, setting.Setting{Key: "late_notice", Value: "on"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "late_notice", list[0].Key)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, setting.ErrSettingNotFound)
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	db := NewTestDatabase(t)
	TruncateAllTables(t, db)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	id := CreateTestEmployee(t, db, "Funke Ade")
	emp, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Funke Ade", emp.FullName)

	emp, err = repo.GetByID(ctx, strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, id, emp.ID)

	_, err = db.Exec(ctx, "UPDATE employees SET deleted_at = NOW() WHERE id = $1", id)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, id)
	assert.ErrorContains(t, err, "employee record not found")

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
