package deadline

import (
	"context"
	"fmt"
	"time"
)

// Start runs a first sweep immediately, then re-arms it on the given interval
// until ctx is cancelled. It blocks. Sweep failures are already logged by Run;
// the schedule keeps going regardless.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	s.logger.Info(fmt.Sprintf("deadline sweep scheduled every %s", interval))
	_ = s.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("deadline sweep scheduler stopped")
			return
		case <-ticker.C:
			_ = s.Run(ctx)
		}
	}
}
