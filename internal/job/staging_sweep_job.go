package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/store"
)

// StagingSweepJob removes conversation staging dirs left behind by uploads
// that never reached publish (process crash, request abort mid-pipeline).
// Published conversations are never touched.
type StagingSweepJob struct {
	convStore *store.ConversationStore
	maxAge    time.Duration
}

func NewStagingSweepJob(convStore *store.ConversationStore, maxAge time.Duration) *StagingSweepJob {
	return &StagingSweepJob{convStore: convStore, maxAge: maxAge}
}

func (j *StagingSweepJob) Name() string {
	return "staging_sweep"
}

func (j *StagingSweepJob) Run(ctx context.Context) error {
	if j.convStore == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	removed, err := j.convStore.SweepStaging(maxAge)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("stale staging dirs removed", zap.Int("count", removed))
	}
	return nil
}
