package eventlog

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSSink publishes each Event as JSON to a subject derived from its
// Kind, grounded on risk-manager/internal/monitor/publisher.go's
// NATSAlertPublisher.PublishAlert. Marshal or publish failures are
// logged, not surfaced to the OMS/TMS caller — the event log is best
// effort and must never make a trade fail.
type NATSSink struct {
	nc      *nats.Conn
	logger  *zap.Logger
	subject string
}

// NewNATSSink wires a Sink that publishes to "<subject>.<kind>".
func NewNATSSink(nc *nats.Conn, logger *zap.Logger, subject string) *NATSSink {
	return &NATSSink{nc: nc, logger: logger, subject: subject}
}

func (s *NATSSink) Publish(evt Event) {
	payload := map[string]any{
		"kind":        evt.Kind,
		"strategy_id": evt.StrategyID,
		"symbol":      evt.Symbol,
		"detail":      evt.Detail,
		"timestamp":   evt.At.Unix(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("eventlog: marshal failed", zap.Error(err))
		return
	}

	subj := fmt.Sprintf("%s.%s", s.subject, evt.Kind)
	if err := s.nc.Publish(subj, data); err != nil {
		s.logger.Error("eventlog: publish failed", zap.String("subject", subj), zap.Error(err))
		return
	}
}

var _ Sink = (*NATSSink)(nil)
