package realtime

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
)

// Sink is one destination for realtime messages.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message, roles []domain.Role) error
}

// Broadcaster fans every published event out to its sinks. Publishing never
// fails from the caller's point of view; sink errors are logged.
type Broadcaster struct {
	sinks   []Sink
	log     logrus.FieldLogger
	now     func() time.Time
	timeout time.Duration
}

func NewBroadcaster(log logrus.FieldLogger, sinks ...Sink) *Broadcaster {
	return &Broadcaster{
		sinks:   sinks,
		log:     log.WithField("component", "broadcaster"),
		now:     func() time.Time { return time.Now().UTC() },
		timeout: 5 * time.Second,
	}
}

// Publish sends event to clients holding one of roles, or to every client when
// roles is empty.
func (b *Broadcaster) Publish(event string, data interface{}, roles ...domain.Role) {
	msg := Message{Event: event, Data: data, Timestamp: b.now()}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	for _, sink := range b.sinks {
		if err := sink.Send(ctx, msg, roles); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"sink":  sink.Name(),
				"event": event,
			}).Warn("failed to publish realtime event")
		}
	}
}
