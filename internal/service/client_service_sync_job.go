package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	DefaultSyncInterval  = 5 * time.Minute
	DefaultRetryInterval = 30 * time.Second
)

type syncJob struct {
	cycler        Cycler
	retryInterval time.Duration

	// triggers holds at most one pending request
	triggers chan models.SyncTrigger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewSyncJob creates a syncJob that runs cycler.SyncCycle on a timer and on
// Trigger. The job is idle until Start is called; triggers sent before that
// are kept until the loop starts.
func NewSyncJob(cycler Cycler, retryInterval time.Duration, log *logger.Logger) SyncJob {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}

	return &syncJob{
		cycler:        cycler,
		retryInterval: retryInterval,
		triggers:      make(chan models.SyncTrigger, 1),
		logger:        log,
	}
}

// Start implements SyncJob. If interval is zero or negative it defaults to
// DefaultSyncInterval. The goroutine exits when ctx is cancelled or Stop is
// called.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	retry := min(j.retryInterval, interval)

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()

		t := time.NewTimer(interval)
		defer t.Stop()

		failing := false
		for {
			var reason models.SyncTrigger
			select {
			case <-jobCtx.Done():
				return
			case reason = <-j.triggers:
			case <-t.C:
				reason = models.TriggerTimer
				if failing {
					reason = models.TriggerReconnect
				}
			}

			ok := j.run(jobCtx, reason)
			if ok && failing {
				j.logger.Info().Str("func", "syncJob.Start").Msg("remote authority reachable again")
			}
			failing = !ok

			next := interval
			if failing {
				next = retry
			}
			t.Stop()
			select {
			case <-t.C:
			default:
			}
			t.Reset(next)
		}
	}()
}

func (j *syncJob) run(ctx context.Context, reason models.SyncTrigger) bool {
	report, err := j.cycler.SyncCycle(ctx, reason)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Warn().Err(err).Str("func", "syncJob.run").
				Str("trigger", string(reason)).
				Msg("sync cycle failed")
		}
		return false
	}

	j.logger.Debug().Str("func", "syncJob.run").
		Str("trigger", string(reason)).
		Int("pushed", report.Push.Accepted+report.Push.Rejected).
		Int("pulled", len(report.Pull.Adopted)).
		Dur("took", report.Finished.Sub(report.Started)).
		Msg("sync cycle finished")
	return true
}

// Trigger implements SyncJob. It never blocks.
func (j *syncJob) Trigger(reason models.SyncTrigger) {
	select {
	case j.triggers <- reason:
	default:
		j.logger.Debug().Str("func", "syncJob.Trigger").
			Str("trigger", string(reason)).
			Msg("sync already pending, trigger coalesced")
	}
}

// Stop implements SyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
