package history

import (
	"sort"

	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

// Summary is the per-sensor mean over a record set, ignoring null
// readings. Count is the number of non-null samples behind each mean.
type Summary struct {
	Mean  map[sensor.Key]*float64
	Count map[sensor.Key]int
}

// Summarize computes per-sensor means over the records. Sensors with
// no non-null samples get a nil mean.
func Summarize(records []Record) Summary {
	sums := make(map[sensor.Key]float64, len(sensor.Keys))
	counts := make(map[sensor.Key]int, len(sensor.Keys))

	for i := range records {
		for _, key := range sensor.Keys {
			if v := records[i].Value(key); v != nil {
				sums[key] += *v
				counts[key]++
			}
		}
	}

	s := Summary{
		Mean:  make(map[sensor.Key]*float64, len(sensor.Keys)),
		Count: make(map[sensor.Key]int, len(sensor.Keys)),
	}
	for _, key := range sensor.Keys {
		s.Count[key] = counts[key]
		if counts[key] > 0 {
			mean := sums[key] / float64(counts[key])
			s.Mean[key] = &mean
		} else {
			s.Mean[key] = nil
		}
	}
	return s
}

// AggregatePoint is one bucket of an aggregation: the bucket label and
// the mean of the non-null readings falling into it.
type AggregatePoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

var bucketLayouts = map[Mode]string{
	ModeDay:   "2006-01-02",
	ModeMonth: "2006-01",
	ModeYear:  "2006",
}

// Aggregate groups the records for one sensor into calendar buckets
// (day, month, or year) and returns the mean per bucket, sorted by
// label. Null readings are excluded; empty buckets are omitted.
func Aggregate(records []Record, key sensor.Key, bucket Mode) []AggregatePoint {
	layout, ok := bucketLayouts[bucket]
	if !ok {
		return nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		v := records[i].Value(key)
		if v == nil {
			continue
		}
		label := records[i].TS.Local().Format(layout)
		sums[label] += *v
		counts[label]++
	}

	points := make([]AggregatePoint, 0, len(sums))
	for label, sum := range sums {
		points = append(points, AggregatePoint{
			Label: label,
			Value: sum / float64(counts[label]),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
	return points
}

// QualityBreakdown counts records per quality band for one sensor.
type QualityBreakdown struct {
	Counts  map[sensor.Quality]int     `json:"counts"`
	Percent map[sensor.Quality]float64 `json:"percent"`
	Total   int                        `json:"total"`
}

// QualityDistribution classifies every record's reading for a sensor
// and tallies the quality bands, with percentages over the total.
func QualityDistribution(records []Record, key sensor.Key) QualityBreakdown {
	b := QualityBreakdown{
		Counts:  make(map[sensor.Quality]int),
		Percent: make(map[sensor.Quality]float64),
	}

	for i := range records {
		q := sensor.Classify(key, records[i].Value(key))
		b.Counts[q]++
		b.Total++
	}
	if b.Total > 0 {
		for q, n := range b.Counts {
			b.Percent[q] = float64(n) * 100 / float64(b.Total)
		}
	}
	return b
}
