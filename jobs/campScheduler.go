package jobs

import (
	"time"

	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/controllers"
	"go.uber.org/zap"
)

// SweepInterval is how often the camp status sweeper runs.
const SweepInterval = time.Hour

// StartCampSweeper runs the camp status sweep on a fixed interval until
// stop is closed. One sweep runs immediately on startup so a restart
// does not leave stale camps waiting for the next tick.
func StartCampSweeper(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()

		sweep()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-stop:
				return
			}
		}
	}()
}

func sweep() {
	swept, err := controllers.SweepCamps(configuration.DB, time.Now())
	if err != nil {
		configuration.Logger.Error("camp sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		configuration.Logger.Info("camp sweep completed", zap.Int64("camps_completed", swept))
	}
}
