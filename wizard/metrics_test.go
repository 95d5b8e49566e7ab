package wizard

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CVForgeBot/model"
	"CVForgeBot/render"
)

func TestMachineRecordsMetrics(t *testing.T) {
	f := newFixture(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	f.gateway.errs = []error{render.Failed("timeout", nil)}
	f.machine = NewMachine(f.catalog, f.answers, f.sessions, f.gateway, WithMetrics(metrics))

	f.send(t, model.EventStart)
	f.send(t, model.EventAnswer, "Jane")
	f.send(t, model.EventBack)
	f.send(t, model.EventBack)
	f.send(t, model.EventAnswer, "Jane")
	f.send(t, model.EventAnswer, "jane@x.com")
	f.send(t, model.EventConfirm)
	f.send(t, model.EventConfirm)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.completed))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.events.WithLabelValues("start", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.events.WithLabelValues("back", outcomeSoftError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.events.WithLabelValues("confirm", outcomeRenderFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.events.WithLabelValues("confirm", outcomeOK)))
	require.Equal(t, 2, testutil.CollectAndCount(metrics.renderDuration))
}
