package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/repository"
)

// SessionSweeper periodically closes sessions that were abandoned or whose
// bill has been settled.
type SessionSweeper struct {
	sessions *repository.SessionRepository
	tables   *repository.TableRepository
	log      logrus.FieldLogger
	now      func() time.Time

	Interval          time.Duration
	InactivityTimeout time.Duration
	PaymentGrace      time.Duration

	StopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSessionSweeper(sessions *repository.SessionRepository, tables *repository.TableRepository, log logrus.FieldLogger) *SessionSweeper {
	return &SessionSweeper{
		sessions:          sessions,
		tables:            tables,
		log:               log.WithField("component", "session_sweeper"),
		now:               utcNow,
		Interval:          time.Minute,
		InactivityTimeout: 30 * time.Minute,
		PaymentGrace:      10 * time.Minute,
		StopChan:          make(chan struct{}),
	}
}

func (sw *SessionSweeper) Start() {
	sw.wg.Add(1)
	go func() {
		defer sw.wg.Done()
		ticker := time.NewTicker(sw.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), sw.Interval)
				if _, err := sw.Sweep(ctx); err != nil {
					sw.log.WithError(err).Error("session sweep failed")
				}
				cancel()
			case <-sw.StopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a running sweep to finish.
func (sw *SessionSweeper) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.StopChan)
	})
	sw.wg.Wait()
}

// Sweep runs both rules once: sessions idle past the inactivity timeout, and
// sessions whose orders are all paid with the last payment older than the grace
// period.
func (sw *SessionSweeper) Sweep(ctx context.Context) (domain.SweepResult, error) {
	now := sw.now()
	var res domain.SweepResult

	n, err := sw.sessions.DeactivateIdle(ctx, now.Add(-sw.InactivityTimeout))
	if err != nil {
		return res, err
	}
	res.Inactive = n

	n, err = sw.sessions.DeactivateSettled(ctx, now.Add(-sw.PaymentGrace))
	if err != nil {
		return res, err
	}
	res.Paid = n

	if res.Total() == 0 {
		return res, nil
	}

	released, err := sw.tables.ReleaseIdle(ctx)
	if err != nil {
		return res, err
	}
	sw.log.WithFields(logrus.Fields{
		"inactive": res.Inactive,
		"paid":     res.Paid,
		"tables":   released,
	}).Info("sessions swept")
	return res, nil
}
