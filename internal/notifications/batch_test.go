package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchProfiles(n int) []Profile {
	profiles := make([]Profile, n)
	for i := range profiles {
		p := testProfile()
		p.UserID = fmt.Sprintf("user-%02d", i)
		profiles[i] = p
	}
	return profiles
}

func TestRunner_RunAll(t *testing.T) {
	store := newFakeStore(batchProfiles(10)...)
	runner := NewRunner(NewEngine(store, time.UTC, discardLogger), RunnerConfig{Workers: 3, UserTimeout: time.Second}, discardLogger)

	res, err := runner.RunAll(context.Background(), may1(21, 0))
	require.NoError(t, err)

	assert.Equal(t, 10, res.Profiles)
	assert.Equal(t, 10, res.Processed)
	assert.Equal(t, 20, res.Sent, "water + workout per user")
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Errors)
}

func TestRunner_ContinuesPastUserFailures(t *testing.T) {
	store := newFakeStore(batchProfiles(5)...)
	store.fail["HydrationLog:user-01"] = errors.New("timeout")
	store.fail["Claim:user-03"] = errors.New("disk full")
	runner := NewRunner(NewEngine(store, time.UTC, discardLogger), DefaultRunnerConfig(), discardLogger)

	res, err := runner.RunAll(context.Background(), may1(21, 0))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Processed)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)

	assert.Len(t, store.recordsFor("user-00"), 2)
	assert.Equal(t, []string{"workout_2024-05-01"}, store.refsFor("user-01"), "hydration unreadable, workout still sent")
	assert.Empty(t, store.recordsFor("user-03"))
	assert.Len(t, store.recordsFor("user-04"), 2)
	assert.Equal(t, 2+1+2+0+2, res.Sent)
}

func TestRunner_ListFailureAbortsRun(t *testing.T) {
	store := newFakeStore(batchProfiles(2)...)
	store.fail["ListProfiles"] = errors.New("db down")
	runner := NewRunner(NewEngine(store, time.UTC, discardLogger), DefaultRunnerConfig(), discardLogger)

	_, err := runner.RunAll(context.Background(), may1(21, 0))
	assert.ErrorContains(t, err, "db down")
}

func TestRunner_IdempotentAcrossOverlappingRuns(t *testing.T) {
	store := newFakeStore(batchProfiles(4)...)
	runner := NewRunner(NewEngine(store, time.UTC, discardLogger), RunnerConfig{Workers: 4}, discardLogger)
	ctx := context.Background()

	results := make(chan BatchResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, _ := runner.RunAll(ctx, may1(21, 0))
			results <- res
		}()
	}
	first, second := <-results, <-results

	assert.Equal(t, 8, first.Sent+second.Sent)
	assert.Equal(t, 8, first.Skipped+second.Skipped)
	for _, p := range batchProfiles(4) {
		assert.Len(t, store.recordsFor(p.UserID), 2)
	}
}

func TestRunner_BatchAndOnDemandAgree(t *testing.T) {
	now := may1(21, 10)

	batchStore := newFakeStore(batchProfiles(3)...)
	runner := NewRunner(NewEngine(batchStore, time.UTC, discardLogger), DefaultRunnerConfig(), discardLogger)
	_, err := runner.RunAll(context.Background(), now)
	require.NoError(t, err)

	checkStore := newFakeStore(batchProfiles(3)...)
	engine := NewEngine(checkStore, time.UTC, discardLogger)
	for _, p := range batchProfiles(3) {
		_, err := engine.CheckUser(context.Background(), p.UserID, now)
		require.NoError(t, err)
		assert.Equal(t, batchStore.refsFor(p.UserID), checkStore.refsFor(p.UserID))
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	store := newFakeStore(batchProfiles(3)...)
	runner := NewRunner(NewEngine(store, time.UTC, discardLogger), DefaultRunnerConfig(), discardLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := runner.RunAll(ctx, may1(21, 0))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Processed)
}

func TestBatchResult_Summary(t *testing.T) {
	r := BatchResult{Profiles: 4, Processed: 4, Sent: 3, Skipped: 1, Failed: 1, Duration: 1500 * time.Millisecond}
	assert.Equal(t, "4/4 users processed, 3 sent, 1 skipped, 1 failed in 1.5s", r.Summary())
}
