package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TrimSchedule runs at the top of every hour.
const TrimSchedule = "0 0 * * * *"

type StreamTrimmer interface {
	XTrimMaxLenApprox(ctx context.Context, key string, maxLen, limit int64) *redis.IntCmd
}

// Scheduler keeps the notification stream bounded so delivered entries do
// not accumulate in Redis.
type Scheduler struct {
	cron   *cron.Cron
	queue  StreamTrimmer
	stream string
	maxLen int64
	log    zerolog.Logger
}

func NewScheduler(queue StreamTrimmer, stream string, maxLen int64, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		queue:  queue,
		stream: stream,
		maxLen: maxLen,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.stream == "" || s.maxLen <= 0 {
		return nil
	}

	if _, err := s.cron.AddFunc(TrimSchedule, s.trimStream); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling; the returned context is done once a running trim
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) trimStream() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	removed, err := s.queue.XTrimMaxLenApprox(ctx, s.stream, s.maxLen, 0).Result()
	if err != nil {
		s.log.Error().Err(err).Str("stream", s.stream).Msg("trim stream failed")
		return
	}
	s.log.Debug().Str("stream", s.stream).Int64("removed", removed).Msg("stream trimmed")
}
