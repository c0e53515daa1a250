package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKost2Repo_ListActiveByNamespace(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteKost2Repo(database)
	ctx := context.Background()

	ns := domain.CostCenterNamespace{Nummernkreis: 5, Bereich: 10, Number: 1}
	other := domain.CostCenterNamespace{Nummernkreis: 5, Bereich: 10, Number: 2}

	require.NoError(t, repo.Create(ctx, testutil.NewTestKost2("5.010.01.02", ns)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestKost2("5.010.01.01", ns)))
	ended := testutil.NewTestKost2("5.010.01.03", ns)
	ended.State = domain.Kost2Ended
	require.NoError(t, repo.Create(ctx, ended))
	require.NoError(t, repo.Create(ctx, testutil.NewTestKost2("5.010.02.01", other)))

	list, err := repo.ListActiveByNamespace(ctx, ns)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "5.010.01.01", list[0].Code)
	assert.Equal(t, "5.010.01.02", list[1].Code)
}

func TestKost2Repo_GetByCode(t *testing.T) {
	repo := NewSQLiteKost2Repo(testutil.NewTestDB(t))
	ctx := context.Background()

	ns := domain.CostCenterNamespace{Nummernkreis: 4, Bereich: 1, Number: 1}
	require.NoError(t, repo.Create(ctx, testutil.NewTestKost2("4.001.01.07", ns)))

	k, err := repo.GetByCode(ctx, "4.001.01.07")
	require.NoError(t, err)
	assert.Equal(t, ns, k.Namespace)
	assert.True(t, k.IsActive())

	_, err = repo.GetByCode(ctx, "9.999.99.99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKost2Repo_FindByCodeUnknownIsNil(t *testing.T) {
	repo := NewSQLiteKost2Repo(testutil.NewTestDB(t))
	ctx := context.Background()

	ns := domain.CostCenterNamespace{Nummernkreis: 4, Bereich: 1, Number: 1}
	require.NoError(t, repo.Create(ctx, testutil.NewTestKost2("4.001.01.07", ns)))

	k, err := repo.FindByCode(ctx, "4.001.01.07")
	require.NoError(t, err)
	require.NotNil(t, k)
	assert.Equal(t, "4.001.01.07", k.Code)

	k, err = repo.FindByCode(ctx, "9.999.99.99")
	require.NoError(t, err)
	assert.Nil(t, k)
}
