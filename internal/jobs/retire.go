package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/repository"
)

// RetireJob periodically flips is_active off on sessions whose expiry has
// passed, so the stored flag catches up with time-based expiry. Read paths
// never depend on this job; they evaluate expiry themselves.
type RetireJob struct {
	sessionRepo repository.SessionRepository
	interval    time.Duration
	done        chan struct{}
}

func NewRetireJob(sessionRepo repository.SessionRepository, interval time.Duration) *RetireJob {
	return &RetireJob{
		sessionRepo: sessionRepo,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *RetireJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("session retire job started")
}

func (j *RetireJob) Stop() {
	close(j.done)
	log.Info().Msg("session retire job stopped")
}

func (j *RetireJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.retire()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.retire()
		}
	}
}

func (j *RetireJob) retire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.sessionRepo.RetireExpired(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to retire expired sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("retired expired sessions")
	}
}
