package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// CensusReporter periodically logs a room and connection census. Read-only;
// operational visibility for a worker's share of the cluster.
type CensusReporter struct {
	cron     *cron.Cron
	core     *Core
	interval time.Duration
	log      logger.Logger
}

func NewCensusReporter(core *Core, interval time.Duration, log logger.Logger) *CensusReporter {
	return &CensusReporter{
		cron:     cron.New(cron.WithSeconds()),
		core:     core,
		interval: interval,
		log:      log,
	}
}

func (r *CensusReporter) Start() error {
	r.log.Info("Starting census reporter", "interval", r.interval)

	_, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), r.report)
	if err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

func (r *CensusReporter) Stop() error {
	r.log.Info("Stopping census reporter")
	ctx := r.cron.Stop()
	<-ctx.Done()
	return nil
}

func (r *CensusReporter) report() {
	snapshot := r.core.Snapshot()
	for room, members := range snapshot {
		r.log.Info("Room census", "room", room, "members", len(members))
	}
	r.log.Info("Worker census", "rooms", len(snapshot), "connections", r.core.ConnectionCount())
}
