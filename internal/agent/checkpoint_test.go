package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintables/codefinder/internal/domain/entities"
)

func checkpointState() *State {
	s := NewState("diabetes", false)
	s.SelectedSystems = []string{"ICD-10-CM"}
	s.SearchTerms = []string{"diabetes"}
	s.Iteration = 1
	s.NeedsRefinement = true
	s.RefinementStrategy = "broaden"
	s.RawResults["ICD-10-CM"] = []entities.CodeRecord{{Code: "E11", Display: "Type 2 diabetes mellitus"}}
	s.Cursor = NodePlan
	return s
}

func TestMemoryCheckpointStore_RoundTrip(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "t1", checkpointState()))

	loaded, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *checkpointState(), *loaded)
}

func TestMemoryCheckpointStore_MissingThread(t *testing.T) {
	store := NewMemoryCheckpointStore()

	loaded, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryCheckpointStore_Delete(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "t1", checkpointState()))
	require.NoError(t, store.Delete(ctx, "t1"))

	loaded, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryCheckpointStore_SaveIsSnapshot(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	s := checkpointState()
	require.NoError(t, store.Save(ctx, "t1", s))

	// Mutating after save must not change the stored checkpoint.
	s.SearchTerms = append(s.SearchTerms, "hyperglycemia")

	loaded, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"diabetes"}, loaded.SearchTerms)
}

func TestSQLiteCheckpointStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteCheckpointStore(ctx, filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, "t1", checkpointState()))

	loaded, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *checkpointState(), *loaded)
}

func TestSQLiteCheckpointStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteCheckpointStore(ctx, filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()

	first := checkpointState()
	require.NoError(t, store.Save(ctx, "t1", first))

	second := checkpointState()
	second.Iteration = 2
	second.Cursor = NodeExecute
	require.NoError(t, store.Save(ctx, "t1", second))

	loaded, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Iteration)
	assert.Equal(t, NodeExecute, loaded.Cursor)
}

func TestSQLiteCheckpointStore_MissingThread(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteCheckpointStore(ctx, filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
