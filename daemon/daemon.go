package daemon

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pbnjay/memory"
	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/pkg/sentinel"
	"github.com/netmon-dev/netmon/pkg/tasks"
)

//lowMemoryBytes is the total system memory below which the daemon
//warns at startup
const lowMemoryBytes = 512 * 1024 * 1024

//Cycler runs one reconciliation cycle against the flow tracker
type Cycler interface {
	ReconcileSnapshot(now time.Time) (sentinel.Result, error)
}

//BaselineRecomputer rebuilds the per device traffic baselines
type BaselineRecomputer interface {
	Run(now time.Time, progress func()) (int, error)
}

//MetricsRecorder writes rate limited network metric samples
type MetricsRecorder interface {
	RecordIfDue(now time.Time) (bool, error)
}

//Daemon drives the polling loop and the background schedules
type Daemon struct {
	conf       *config.Config
	log        *log.Logger
	engine     Cycler
	recomputer BaselineRecomputer
	recorder   MetricsRecorder
	tasks      *tasks.Store

	//MaxCycles stops the loop after that many cycles when positive
	MaxCycles int
}

//New creates a Daemon around an engine and its background jobs
func New(conf *config.Config, logger *log.Logger, engine Cycler,
	recomputer BaselineRecomputer, recorder MetricsRecorder) *Daemon {
	return &Daemon{
		conf:       conf,
		log:        logger,
		engine:     engine,
		recomputer: recomputer,
		recorder:   recorder,
		tasks:      tasks.NewStore(),
	}
}

//Tasks exposes the daemon's background job statuses
func (d *Daemon) Tasks() *tasks.Store {
	return d.tasks
}

//Run polls the flow tracker until stop closes. A failed cycle is
//logged and the loop keeps going; only scheduler setup errors are
//fatal.
func (d *Daemon) Run(stop <-chan struct{}) error {
	if total := memory.TotalMemory(); total > 0 && total < lowMemoryBytes {
		d.log.WithFields(log.Fields{
			"total_bytes": total,
		}).Warn("system memory is low, reconciliation may fall behind")
	}

	scheduler := gocron.NewScheduler(time.UTC)

	job, err := scheduler.Every(d.conf.S.Daemon.BaselineRecomputeMinutes).Minutes().
		Do(d.recomputeBaselines)
	if err != nil {
		return err
	}
	job.SingletonMode()

	_, err = scheduler.Every(d.conf.S.Daemon.MetricsSampleSeconds).Seconds().
		Do(d.recordMetrics)
	if err != nil {
		return err
	}

	scheduler.StartAsync()
	defer scheduler.Stop()

	interval := time.Duration(d.conf.S.Daemon.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycles := 0
	for {
		select {
		case <-stop:
			return nil
		case tick := <-ticker.C:
			d.runCycle(tick.UTC())
			cycles++
			if d.MaxCycles > 0 && cycles >= d.MaxCycles {
				return nil
			}
		}
	}
}

func (d *Daemon) runCycle(now time.Time) {
	result, err := d.engine.ReconcileSnapshot(now)
	if err != nil {
		d.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("reconciliation cycle failed")
		return
	}
	if result.FlowsSeen > 0 || result.ConnectionsDeleted > 0 {
		d.log.WithFields(log.Fields{
			"flows":   result.FlowsSeen,
			"devices": result.DevicesUpserted,
			"hosts":   result.RemoteHostsUpserted,
			"deleted": result.ConnectionsDeleted,
		}).Debug("reconciliation cycle complete")
	}
}

func (d *Daemon) recomputeBaselines() {
	now := time.Now().UTC()
	id := d.tasks.Enqueue("baseline-recompute", now)
	d.tasks.Start(id, now)

	written, err := d.recomputer.Run(now, nil)
	if err != nil {
		d.tasks.Fail(id, err.Error(), time.Now().UTC())
		d.log.WithFields(log.Fields{
			"task":  id,
			"error": err.Error(),
		}).Error("baseline recompute failed")
		return
	}

	d.tasks.Finish(id, fmt.Sprintf("%d baselines", written), time.Now().UTC())
	d.log.WithFields(log.Fields{
		"task":      id,
		"baselines": written,
	}).Info("recomputed device baselines")
}

func (d *Daemon) recordMetrics() {
	if _, err := d.recorder.RecordIfDue(time.Now().UTC()); err != nil {
		d.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("metrics sample failed")
	}
}
