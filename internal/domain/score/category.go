package score

import (
	"bytes"
	"encoding/json"

	"stockscore/pkg/errors"
)

// MetricValue is the display value of one sub-metric: a float64, a string or nil when absent
type MetricValue struct {
	Label string
	Value any
}

// CategoryResult is one category's score with its coverage counters.
// Score is 0 with AvailableMetrics == 0 when no sub-metric had data.
type CategoryResult struct {
	Score            int
	Metrics          []MetricValue
	AvailableMetrics int
	TotalMetrics     int
}

// Value returns the display value for label
func (c CategoryResult) Value(label string) (any, bool) {
	for _, m := range c.Metrics {
		if m.Label == label {
			return m.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders Metrics as an object keyed by label, in table order
func (c CategoryResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"score":`)
	score, _ := json.Marshal(c.Score)
	buf.Write(score)

	buf.WriteString(`,"metrics":{`)
	for i, m := range c.Metrics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal metric %q", m.Label)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`},"availableMetrics":`)
	available, _ := json.Marshal(c.AvailableMetrics)
	buf.Write(available)
	buf.WriteString(`,"totalMetrics":`)
	total, _ := json.Marshal(c.TotalMetrics)
	buf.Write(total)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a CategoryResult, keeping metric order
func (c *CategoryResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score            int             `json:"score"`
		Metrics          json.RawMessage `json:"metrics"`
		AvailableMetrics int             `json:"availableMetrics"`
		TotalMetrics     int             `json:"totalMetrics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	metrics, err := decodeOrderedMetrics(raw.Metrics)
	if err != nil {
		return errors.Wrap(err, "decode category metrics")
	}

	*c = CategoryResult{
		Score:            raw.Score,
		Metrics:          metrics,
		AvailableMetrics: raw.AvailableMetrics,
		TotalMetrics:     raw.TotalMetrics,
	}
	return nil
}

func decodeOrderedMetrics(data json.RawMessage) ([]MetricValue, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Newf("metrics: expected object, got %v", tok)
	}

	var out []MetricValue
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label, ok := tok.(string)
		if !ok {
			return nil, errors.Newf("metrics: expected key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		out = append(out, MetricValue{Label: label, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
