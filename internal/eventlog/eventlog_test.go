package eventlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOp_DiscardsEvents(t *testing.T) {
	var sink Sink = NoOp{}
	assert.NotPanics(t, func() {
		sink.Publish(Event{Kind: "order_created", StrategyID: "s1", Symbol: "AAPL", At: time.Now()})
	})
}
