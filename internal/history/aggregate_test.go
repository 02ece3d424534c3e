package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

func TestSummarizeIgnoresNulls(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	records := []Record{
		{TS: ts, PH: sensor.Float(7.0), Turbidez: sensor.Float(2.0)},
		{TS: ts.Add(time.Minute), PH: sensor.Float(8.0), Turbidez: nil},
		{TS: ts.Add(2 * time.Minute), PH: nil, Turbidez: nil},
	}

	s := Summarize(records)

	require.NotNil(t, s.Mean[sensor.PH])
	assert.Equal(t, 7.5, *s.Mean[sensor.PH])
	assert.Equal(t, 2, s.Count[sensor.PH])

	require.NotNil(t, s.Mean[sensor.Turbidez])
	assert.Equal(t, 2.0, *s.Mean[sensor.Turbidez])
	assert.Equal(t, 1, s.Count[sensor.Turbidez])

	assert.Nil(t, s.Mean[sensor.TDS])
	assert.Equal(t, 0, s.Count[sensor.TDS])
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	for _, key := range sensor.Keys {
		assert.Nil(t, s.Mean[key])
		assert.Equal(t, 0, s.Count[key])
	}
}

func TestAggregateByDay(t *testing.T) {
	records := []Record{
		recordAt(localDate(2026, 3, 14, 8, 0), 7.0),
		recordAt(localDate(2026, 3, 14, 20, 0), 8.0),
		recordAt(localDate(2026, 3, 15, 12, 0), 6.0),
		{TS: localDate(2026, 3, 16, 12, 0)}, // null reading, no bucket
	}

	points := Aggregate(records, sensor.PH, ModeDay)
	require.Len(t, points, 2)
	assert.Equal(t, AggregatePoint{Label: "2026-03-14", Value: 7.5}, points[0])
	assert.Equal(t, AggregatePoint{Label: "2026-03-15", Value: 6.0}, points[1])
}

func TestAggregateByMonthAndYearLabels(t *testing.T) {
	records := []Record{
		recordAt(localDate(2026, 1, 10, 0, 0), 10),
		recordAt(localDate(2026, 2, 10, 0, 0), 20),
		recordAt(localDate(2025, 12, 10, 0, 0), 30),
	}

	byMonth := Aggregate(records, sensor.PH, ModeMonth)
	require.Len(t, byMonth, 3)
	assert.Equal(t, "2025-12", byMonth[0].Label)
	assert.Equal(t, "2026-01", byMonth[1].Label)
	assert.Equal(t, "2026-02", byMonth[2].Label)

	byYear := Aggregate(records, sensor.PH, ModeYear)
	require.Len(t, byYear, 2)
	assert.Equal(t, AggregatePoint{Label: "2025", Value: 30}, byYear[0])
	assert.Equal(t, AggregatePoint{Label: "2026", Value: 15}, byYear[1])
}

func TestAggregateRejectsRangeBucket(t *testing.T) {
	records := []Record{recordAt(localDate(2026, 3, 14, 8, 0), 7.0)}
	assert.Nil(t, Aggregate(records, sensor.PH, ModeRange))
}

func TestQualityDistribution(t *testing.T) {
	records := []Record{
		recordAt(localDate(2026, 3, 14, 8, 0), 7.0),  // Buena
		recordAt(localDate(2026, 3, 14, 9, 0), 6.2),  // Regular
		recordAt(localDate(2026, 3, 14, 10, 0), 5.0), // Mala
		{TS: localDate(2026, 3, 14, 11, 0)},          // null, Desconocida
	}

	b := QualityDistribution(records, sensor.PH)
	assert.Equal(t, 4, b.Total)
	assert.Equal(t, 1, b.Counts[sensor.Buena])
	assert.Equal(t, 1, b.Counts[sensor.Regular])
	assert.Equal(t, 1, b.Counts[sensor.Mala])
	assert.Equal(t, 1, b.Counts[sensor.Desconocida])
	assert.Equal(t, 25.0, b.Percent[sensor.Buena])
}

func TestQualityDistributionEmpty(t *testing.T) {
	b := QualityDistribution(nil, sensor.PH)
	assert.Equal(t, 0, b.Total)
	assert.Empty(t, b.Percent)
}
