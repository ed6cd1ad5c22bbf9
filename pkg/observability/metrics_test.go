package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/model"
	"github.com/aretw0/aastree/pkg/observability"
	"github.com/aretw0/aastree/pkg/registry"
	"github.com/aretw0/aastree/pkg/tree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyModel(hooks domain.EditHooks) (*model.Model, model.Index) {
	prop := domain.NewProperty("MaxRPM", domain.ValueTypeInt, 3000)
	m := model.New(tree.NewRoot(tree.Nested, registry.AAS(), prop), model.WithHooks(hooks))
	for row := range m.RowCount(model.Index{}) {
		idx := m.Index(row, 0, model.Index{})
		if m.Data(idx, tree.RoleName) == "value" {
			return m, idx
		}
	}
	return m, model.Index{}
}

func TestMetrics_CountsEdits(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	m, value := propertyModel(metrics.Hooks())
	require.NoError(t, m.SetValue(value, 1))
	require.NoError(t, m.SetValue(value, 2))
	assert.Error(t, m.SetValue(value, "fast"))
	m.Undo()
	m.Redo()

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Edits.WithLabelValues("set")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejected.WithLabelValues("set")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.History.WithLabelValues("undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.History.WithLabelValues("redo")))

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "registering twice fails")
}

func TestCombine_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	metrics, err := observability.NewMetrics(nil)
	require.NoError(t, err)

	m, value := propertyModel(observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger), domain.EditHooks{}))
	require.NoError(t, m.SetValue(value, 7))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Edits.WithLabelValues("set")))
	assert.Contains(t, buf.String(), "msg=edit")
	assert.Contains(t, buf.String(), "label=value")
}
