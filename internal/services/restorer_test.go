package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/models"
)

func TestApplyBackupDiff_DeletesExtraSeats(t *testing.T) {
	backupSeats := sectionSeats("vip-central-", sixRows, 24)
	store := newMemSeatStore(sectionSeats("vip-central-", sixRows, 25))
	reconciler := NewReconciler(zap.NewNop())
	snap := snapshotOf(backupSeats)

	diff := reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	result, err := NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)

	assert.Len(t, result.Deleted, 6)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Failed)
	assert.Len(t, store.list(), 144)

	// a second pass finds nothing to do
	diff = reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	assert.True(t, diff.Clean())
	result, err = NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Updated)
	assert.False(t, result.Changed())
}

func TestApplyBackupDiff_RestoresPositions(t *testing.T) {
	backupSeats := sectionSeats("vip-central-", []string{"A", "B"}, 5)
	live := sectionSeats("vip-central-", []string{"A", "B"}, 5)
	live[0].Metadata = metadataAt(500, 500)
	live[6].Metadata = `{not json`
	live[7].Metadata = ""
	store := newMemSeatStore(live)
	snap := snapshotOf(backupSeats)
	reconciler := NewReconciler(zap.NewNop())

	diff := reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	require.Len(t, diff.Mismatched, 3)

	result, err := NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip-central-A-1", "vip-central-B-2", "vip-central-B-3"}, result.Updated)

	// every restored position is exactly the backup's
	for _, seat := range store.list() {
		pos, err := seat.Position()
		require.NoError(t, err)
		want, err := models.PositionFromMetadata([]byte(snap.Index()[seat.ID].Metadata))
		require.NoError(t, err)
		assert.Equal(t, want, pos, seat.ID)
	}

	diff = reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	assert.True(t, diff.Clean())
	assert.Len(t, diff.Matched, 10)
}

func TestApplyBackupDiff_MissingSeatsAreNotReinserted(t *testing.T) {
	store := newMemSeatStore(sectionSeats("vip-central-", []string{"A"}, 3))
	snap := snapshotOf(sectionSeats("vip-central-", []string{"A"}, 5))

	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	require.Len(t, diff.Missing, 2)

	result, err := NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Zero(t, store.writes)
	assert.Len(t, store.list(), 3)
	assert.False(t, result.Changed())
}

func TestApplyBackupDiff_AlreadyDeleted(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"F"}, 25)
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(live[:24]), "vip-central-", knownPrefixes)
	require.Len(t, diff.Extra, 1)

	seats := new(MockSeatStore)
	seats.On("Delete", mock.Anything, "vip-central-F-25").Return(models.ErrSeatNotFound)

	result, err := NewRestorer(seats, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip-central-F-25"}, result.AlreadySatisfied)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Failed)
	seats.AssertExpectations(t)
}

func TestApplyBackupDiff_FailuresDoNotStopTheRun(t *testing.T) {
	backupSeats := sectionSeats("vip-central-", []string{"A"}, 3)
	live := sectionSeats("vip-central-", []string{"A"}, 4)
	live[0].Metadata = metadataAt(1, 1)
	live[1].Metadata = metadataAt(2, 2)
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(backupSeats), "vip-central-", knownPrefixes)

	seats := new(MockSeatStore)
	seats.On("Delete", mock.Anything, "vip-central-A-4").Return(errors.New("lock wait timeout"))
	seats.On("UpdateMetadata", mock.Anything, "vip-central-A-1", mock.Anything).Return(errors.New("deadlock"))
	seats.On("UpdateMetadata", mock.Anything, "vip-central-A-2", `{"canvas":{"position":{"x":20,"y":0}},"status":"AVAILABLE"}`).Return(nil)

	result, err := NewRestorer(seats, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)

	assert.Equal(t, []string{"vip-central-A-2"}, result.Updated)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "delete", result.Failed[0].Op)
	assert.Equal(t, "vip-central-A-4", result.Failed[0].SeatID)
	assert.Equal(t, "update vip-central-A-1: deadlock", result.Failed[1].Error())
	seats.AssertExpectations(t)
}

func TestApplyBackupDiff_DryRun(t *testing.T) {
	backupSeats := sectionSeats("vip-central-", []string{"A"}, 3)
	live := sectionSeats("vip-central-", []string{"A"}, 4)
	live[0].Metadata = metadataAt(7, 7)
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(backupSeats), "vip-central-", knownPrefixes)

	seats := new(MockSeatStore)
	cache := new(MockCacheInvalidator)

	result, err := NewRestorer(seats, cache, zap.NewNop(), RestoreOptions{DryRun: true}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"vip-central-A-4"}, result.Deleted)
	assert.Equal(t, []string{"vip-central-A-1"}, result.Updated)
	assert.False(t, result.Changed())
	seats.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	seats.AssertNotCalled(t, "UpdateMetadata", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "InvalidateVenue", mock.Anything, mock.Anything)
}

func TestApplyBackupDiff_InvalidatesCache(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A"}, 4)
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(live[:3]), "vip-central-", knownPrefixes)
	store := newMemSeatStore(live)

	cache := new(MockCacheInvalidator)
	cache.On("InvalidateVenue", mock.Anything, testVenue).Return(2, nil).Once()

	result, err := NewRestorer(store, cache, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CacheKeysCleared)
	cache.AssertExpectations(t)
}

func TestApplyBackupDiff_CacheFailureIsNotFatal(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A"}, 2)
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(live[:1]), "vip-central-", knownPrefixes)

	cache := new(MockCacheInvalidator)
	cache.On("InvalidateVenue", mock.Anything, testVenue).Return(0, errors.New("connection refused"))

	result, err := NewRestorer(newMemSeatStore(live), cache, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Len(t, result.Deleted, 1)
	cache.AssertExpectations(t)
}

func TestApplyBackupDiff_Cancelled(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A"}, 4)
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(live[:2]), "vip-central-", knownPrefixes)
	store := newMemSeatStore(live)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(ctx, diff)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, result)
	assert.Zero(t, store.writes)
}

func TestApplyBackupDiff_RestoresCapturedTextExactly(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A"}, 3)
	live[0].Metadata = `{not json`
	live[1].Metadata = `"legacy"`
	store := newMemSeatStore(live)

	var buf bytes.Buffer
	require.NoError(t, backup.Capture(testVenue, store.list(), time.Now()).Encode(&buf))
	snap, err := backup.Parse(&buf)
	require.NoError(t, err)

	reconciler := NewReconciler(zap.NewNop())
	diff := reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	assert.True(t, diff.Clean(), "a fresh capture matches the live seats")

	require.NoError(t, store.UpdateMetadata(context.Background(), "vip-central-A-1", metadataAt(1, 1)))
	require.NoError(t, store.UpdateMetadata(context.Background(), "vip-central-A-2", metadataAt(2, 2)))

	diff = reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	result, err := NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip-central-A-1", "vip-central-A-2"}, result.Updated)

	restored := store.list()
	assert.Equal(t, `{not json`, restored[0].Metadata)
	assert.Equal(t, `"legacy"`, restored[1].Metadata)

	diff = reconciler.DiffAgainstBackup(store.list(), snap, "vip-central-", knownPrefixes)
	assert.True(t, diff.Clean())
	assert.Len(t, diff.Matched, 3)
}

func TestApplyBackupDiff_VenueWideKeepsUncoveredSections(t *testing.T) {
	var live []*models.Seat
	live = append(live, sectionSeats("vip-central-", []string{"A"}, 4)...)
	live = append(live, sectionSeats("vip-derecha-", []string{"A"}, 3)...)
	store := newMemSeatStore(live)
	snap := snapshotOf(sectionSeats("vip-central-", []string{"A"}, 3))

	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(store.list(), snap, "", knownPrefixes)
	require.Len(t, diff.Extra, 1)
	assert.Equal(t, "vip-central-A-4", diff.Extra[0].ID)
	assert.Equal(t, []string{"vip-derecha-A-1", "vip-derecha-A-2", "vip-derecha-A-3"}, diff.Uncovered)

	result, err := NewRestorer(store, nil, zap.NewNop(), RestoreOptions{}).ApplyBackupDiff(context.Background(), diff)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip-central-A-4"}, result.Deleted)
	assert.Len(t, store.list(), 6)
}
