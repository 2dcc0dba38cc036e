package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunestream/internal/domain"
)

func TestJobLifecycleCompleted(t *testing.T) {
	o := NewOrchestrator(Config{Retention: time.Minute})
	defer o.Shutdown()

	release := make(chan struct{})
	id := o.Accept(domain.JobKindTorrentSearch, map[string]string{"track": "song"}, func(ctx context.Context, progress func(int)) (any, error) {
		progress(50)
		<-release
		return "payload", nil
	})

	require.NotEmpty(t, id)

	assert.Eventually(t, func() bool {
		job, err := o.Status(id)
		return err == nil && job.Status == domain.JobStatusProcessing && job.Progress == 50
	}, time.Second, 5*time.Millisecond)

	close(release)

	assert.Eventually(t, func() bool {
		job, err := o.Status(id)
		return err == nil && job.Status == domain.JobStatusCompleted
	}, time.Second, 5*time.Millisecond)

	job, err := o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "payload", job.Result)
	assert.NotNil(t, job.CompletedAt)
}

func TestJobLifecycleFailed(t *testing.T) {
	o := NewOrchestrator(Config{Retention: time.Minute})
	defer o.Shutdown()

	id := o.Accept(domain.JobKindStreamPrepare, nil, func(ctx context.Context, progress func(int)) (any, error) {
		return nil, errors.New("no peers responded")
	})

	assert.Eventually(t, func() bool {
		job, err := o.Status(id)
		return err == nil && job.Status == domain.JobStatusFailed
	}, time.Second, 5*time.Millisecond)

	job, err := o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, "no peers responded", job.Error)
}

func TestJobPanicRecovered(t *testing.T) {
	o := NewOrchestrator(Config{Retention: time.Minute})
	defer o.Shutdown()

	id := o.Accept(domain.JobKindStreamPrepare, nil, func(ctx context.Context, progress func(int)) (any, error) {
		panic("boom")
	})

	assert.Eventually(t, func() bool {
		job, err := o.Status(id)
		return err == nil && job.Status == domain.JobStatusFailed
	}, time.Second, 5*time.Millisecond)
}

func TestProgressNeverMovesBackwards(t *testing.T) {
	o := NewOrchestrator(Config{Retention: time.Minute})
	defer o.Shutdown()

	release := make(chan struct{})
	id := o.Accept(domain.JobKindTrackExport, nil, func(ctx context.Context, progress func(int)) (any, error) {
		progress(80)
		progress(30)
		progress(90)
		<-release
		return nil, nil
	})

	assert.Eventually(t, func() bool {
		job, err := o.Status(id)
		return err == nil && job.Progress == 90
	}, time.Second, 5*time.Millisecond)

	job, _ := o.Status(id)
	assert.Equal(t, 90, job.Progress)
	close(release)
}

func TestTerminalJobReapedAfterFirstPoll(t *testing.T) {
	o := NewOrchestrator(Config{Retention: 30 * time.Millisecond})
	defer o.Shutdown()

	id := o.Accept(domain.JobKindTorrentSearch, nil, func(ctx context.Context, progress func(int)) (any, error) {
		return 42, nil
	})

	assert.Eventually(t, func() bool {
		job, err := o.Status(id)
		return err == nil && job.Status.Terminal()
	}, time.Second, 5*time.Millisecond)

	// The first terminal poll starts the retention clock.
	assert.Eventually(t, func() bool {
		_, err := o.Status(id)
		return errors.Is(err, domain.ErrJobNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestStatusUnknownJob(t *testing.T) {
	o := NewOrchestrator(Config{})
	defer o.Shutdown()

	_, err := o.Status("nope")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}
