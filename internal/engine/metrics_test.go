package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/narrative-engine/internal/mocks"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMetricsCountTurnsAndMarkers(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := mocks.NewMockChatClient(t)
	client.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Return([]string{"【勇气+1，智慧+2】【行动选项】1. 走"}, nil).Once()
	client.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	g := NewGame(NewEngine(client, nil, NewMetrics(reg)), nil, WithIDSource(&seqIDs{}))
	require.NoError(t, g.Init(nil))

	_, err := g.Send(context.Background(), "走", nil)
	require.NoError(t, err)
	_, err = g.Send(context.Background(), "再走", nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, reg, "narrative_turns_total", "outcome", "applied"))
	assert.Equal(t, 1.0, counterValue(t, reg, "narrative_turns_total", "outcome", "fallback"))
	assert.Equal(t, 2.0, counterValue(t, reg, "narrative_markers_extracted_total", "kind", "stat_delta"))
	assert.Equal(t, 1.0, counterValue(t, reg, "narrative_markers_extracted_total", "kind", "action_options"))
}

func TestMetricsCountUnmatchedGoals(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := mocks.NewMockChatClient(t)
	client.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Return([]string{"【目标更新:不存在的目标 +10%】"}, nil).Once()

	g := NewGame(NewEngine(client, nil, NewMetrics(reg)), nil, WithIDSource(&seqIDs{}))
	require.NoError(t, g.Init(nil))
	before := g.State().Goals

	_, err := g.Send(context.Background(), "走", nil)
	require.NoError(t, err)

	assert.Equal(t, before, g.State().Goals)
	assert.Equal(t, 1.0, counterValue(t, reg, "narrative_markers_extracted_total", "kind", "goal_update"),
		"extraction is counted even when no goal matches")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.turn(OutcomeApplied)
		m.chat("narrate", testTime, nil)
	})
}
