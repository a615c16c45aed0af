package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/leafsense/internal/domain/faults"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

func record(id string, day int) *plants.AnalysisRecord {
	rec := &plants.AnalysisRecord{
		ID:   id,
		Date: time.Date(2025, 7, day, 12, 0, 0, 0, time.UTC),
	}
	rec.PlantName = "Basil"
	rec.IsHealthy = true
	return rec
}

func TestPlantRepository_CreateAndGet(t *testing.T) {
	repo := NewPlantRepository()
	ctx := context.Background()

	p, err := repo.CreateProfile(ctx, "acme", "Balcony basil")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "acme", p.TenantID)
	assert.Empty(t, p.AnalysisHistory)

	got, err := repo.GetProfile(ctx, "acme", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Balcony basil", got.Name)
}

func TestPlantRepository_GetUnknown(t *testing.T) {
	repo := NewPlantRepository()

	_, err := repo.GetProfile(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, plants.ErrNotFound)
}

func TestPlantRepository_TenantsAreIsolated(t *testing.T) {
	repo := NewPlantRepository()
	ctx := context.Background()

	p, err := repo.CreateProfile(ctx, "acme", "Basil")
	require.NoError(t, err)

	_, err = repo.GetProfile(ctx, "globex", p.ID)
	assert.ErrorIs(t, err, plants.ErrNotFound)

	list, err := repo.ListProfiles(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlantRepository_ListPreservesCreationOrder(t *testing.T) {
	repo := NewPlantRepository()
	ctx := context.Background()

	names := []string{"Basil", "Tomato", "Fern"}
	for _, n := range names {
		_, err := repo.CreateProfile(ctx, "acme", n)
		require.NoError(t, err)
	}

	list, err := repo.ListProfiles(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, len(names))
	for i, p := range list {
		assert.Equal(t, names[i], p.Name)
	}
}

func TestPlantRepository_AppendAndMostRecent(t *testing.T) {
	repo := NewPlantRepository()
	ctx := context.Background()

	p, err := repo.CreateProfile(ctx, "acme", "Basil")
	require.NoError(t, err)

	last, err := repo.MostRecent(ctx, "acme", p.ID)
	require.NoError(t, err)
	assert.Nil(t, last, "empty history yields no record and no error")

	for i, id := range []string{"rec-1", "rec-2", "rec-3"} {
		updated, err := repo.Append(ctx, "acme", p.ID, record(id, i+1))
		require.NoError(t, err)
		require.Len(t, updated.AnalysisHistory, i+1)
	}

	last, err = repo.MostRecent(ctx, "acme", p.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "rec-3", last.ID)

	got, err := repo.GetProfile(ctx, "acme", p.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(got.AnalysisHistory))
	for _, rec := range got.AnalysisHistory {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"rec-1", "rec-2", "rec-3"}, ids)
}

func TestPlantRepository_AppendUnknownProfile(t *testing.T) {
	repo := NewPlantRepository()

	_, err := repo.Append(context.Background(), "acme", "missing", record("rec-1", 1))
	assert.ErrorIs(t, err, plants.ErrNotFound)

	_, err = repo.MostRecent(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, plants.ErrNotFound)
}

func TestPlantRepository_ReadsAreCopies(t *testing.T) {
	repo := NewPlantRepository()
	ctx := context.Background()

	p, err := repo.CreateProfile(ctx, "acme", "Basil")
	require.NoError(t, err)
	_, err = repo.Append(ctx, "acme", p.ID, record("rec-1", 1))
	require.NoError(t, err)

	got, err := repo.GetProfile(ctx, "acme", p.ID)
	require.NoError(t, err)
	got.Name = "mutated"
	got.AnalysisHistory[0].ID = "mutated"

	fresh, err := repo.GetProfile(ctx, "acme", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basil", fresh.Name)
	assert.Equal(t, "rec-1", fresh.AnalysisHistory[0].ID)
}

func TestFaultRepository_ListNewestFirstWithLimit(t *testing.T) {
	repo := NewFaultRepository()
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		err := repo.Save(ctx, &faults.Fault{
			TenantID:  "acme",
			ProfileID: "p1",
			Kind:      faults.KindTransport,
			Message:   msg,
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(ctx, &faults.Fault{TenantID: "acme", ProfileID: "p2", Kind: faults.KindMalformed, Message: "other plant"}))

	got, err := repo.ListByProfile(ctx, "acme", "p1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.NotZero(t, got[0].ID)
}
