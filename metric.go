package sender

import (
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// HostTag is the metric tag that overrides the host of the data points derived from a metric.
const HostTag = "host"

// ValueField is the field name that maps to the bare metric name as item key.
const ValueField = "value"

// Metric is a minimal protocol.Metric so that callers need no Influx specific implementation.
type Metric struct {
	name      string
	tags      []*protocol.Tag
	fields    []*protocol.Field
	timestamp time.Time
}

func NewMetric(name string) *Metric {
	return &Metric{name: name}
}

func (m *Metric) SetTime(t time.Time) {
	m.timestamp = t
}

// Time returns the metric's timestamp, or the zero time if none was set.
func (m *Metric) Time() time.Time {
	return m.timestamp
}

func (m *Metric) Name() string {
	return m.name
}

func (m *Metric) TagList() []*protocol.Tag {
	return m.tags
}

func (m *Metric) FieldList() []*protocol.Field {
	return m.fields
}

func (m *Metric) AddTag(key, value string) *Metric {
	m.tags = append(m.tags, &protocol.Tag{
		Key:   key,
		Value: value,
	})
	return m
}

func (m *Metric) AddField(key string, value interface{}) *Metric {
	m.fields = append(m.fields, &protocol.Field{
		Key:   key,
		Value: value,
	})
	return m
}

// DataPointsFromMetric converts each field of m into a data point.
//
// The item key is the metric name for a field called "value" and "name.field" otherwise.
// A "host" tag takes precedence over host. A zero metric time leaves the clock unset.
func DataPointsFromMetric(host string, m protocol.Metric) []DataPoint {
	for _, tag := range m.TagList() {
		if tag.Key == HostTag && tag.Value != "" {
			host = tag.Value
		}
	}

	ts := m.Time()
	points := make([]DataPoint, 0, len(m.FieldList()))
	for _, field := range m.FieldList() {
		key := m.Name()
		if field.Key != ValueField {
			key = key + "." + field.Key
		}

		point := NewDataPoint(host, key, field.Value)
		if !ts.IsZero() {
			point = point.At(ts)
		}
		points = append(points, point)
	}
	return points
}
