package sender

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDataPointsFromMetric(t *testing.T) {
	metric := NewMetric("cpu").
		AddTag("region", "eu").
		AddField("value", 0.52).
		AddField("idle", 97)
	metric.SetTime(time.Unix(1700000000, 42))

	points := DataPointsFromMetric("host1", metric)

	assert.Equal(t, []DataPoint{
		{Host: "host1", Key: "cpu", Value: 0.52, Clock: 1700000000, NS: 42},
		{Host: "host1", Key: "cpu.idle", Value: 97, Clock: 1700000000, NS: 42},
	}, points)
}

func TestDataPointsFromMetric_HostTag(t *testing.T) {
	metric := NewMetric("disk").AddTag("host", "db1").AddField("free", "12G")

	points := DataPointsFromMetric("default", metric)

	assert.Equal(t, []DataPoint{{Host: "db1", Key: "disk.free", Value: "12G"}}, points)
}

func TestAddMetric(t *testing.T) {
	client := New("zabbix", 0)
	client.AddDataPoint("h", "first", 1).
		AddMetric("h", NewMetric("mem").AddField("used", 1).AddField("free", 2))

	assert.Equal(t, 3, client.Len())
	keys := []string{}
	for _, p := range client.Pending() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"first", "mem.used", "mem.free"}, keys)
}
