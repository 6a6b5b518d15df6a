package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/savetrack/internal/forecast"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2025, 6, 15, 8, 30, 5, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "predictions-20250615T030005Z.json", ObjectName(at))
}

func TestStreamSinkWritesEncodedReport(t *testing.T) {
	report := &Report{
		GeneratedAt: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		AsOf:        "2025-06-15",
		Goals: []GoalPrediction{{
			GoalID:   "g1",
			Name:     "Bike",
			Deadline: "2025-12-31",
			Prediction: forecast.Result{
				ExpectedCompletionDate: "2025-10-01",
				SuccessProbability:     80,
				RiskLevel:              forecast.RiskMedium,
			},
		}},
	}
	data, err := report.Encode()
	require.NoError(t, err)

	var buf bytes.Buffer
	loc, err := NewStreamSink(&buf, "stdout").Write(context.Background(), "r.json", data)
	require.NoError(t, err)
	assert.Equal(t, "stdout", loc)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	goals := decoded["goals"].([]any)
	require.Len(t, goals, 1)
	prediction := goals[0].(map[string]any)["prediction"].(map[string]any)
	assert.Equal(t, "medium", prediction["risk_level"])
	assert.Equal(t, "2025-10-01", prediction["expected_completion_date"])
}
