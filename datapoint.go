package sender

import "time"

// RequestSenderData is the request type of trapper item submissions.
const RequestSenderData = "sender data"

// DataPoint is one value submitted for a trapper item.
// A zero Clock is left out of the request and the server stamps the value on receipt.
type DataPoint struct {
	Host  string      `json:"host"`
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
	Clock int64       `json:"clock,omitempty"`
	NS    int         `json:"ns,omitempty"`
}

// NewDataPoint creates a data point without a timestamp.
func NewDataPoint(host, key string, value interface{}) DataPoint {
	return DataPoint{Host: host, Key: key, Value: value}
}

// At returns a copy of the data point stamped with t.
func (d DataPoint) At(t time.Time) DataPoint {
	d.Clock = t.Unix()
	d.NS = t.Nanosecond()
	return d
}

// Request is the JSON body of a sender request.
type Request struct {
	Request string      `json:"request"`
	Data    []DataPoint `json:"data"`
}
