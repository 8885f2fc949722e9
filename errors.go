package sender

import "errors"

// Errors returned by Sender. Each is wrapped around its cause and can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned by NewSender when the target is unusable.
	ErrInvalidConfig = errors.New("zabbix: invalid configuration")

	// ErrInvalidValue is returned when a data point value cannot be encoded as JSON.
	// Nothing was transmitted and the batch is kept.
	ErrInvalidValue = errors.New("zabbix: invalid value")

	// ErrConnect is returned when the server could not be reached.
	// Nothing was transmitted and the batch is kept.
	ErrConnect = errors.New("zabbix: failed to connect")

	// ErrTransmit is returned when writing the request failed. The batch has been discarded.
	ErrTransmit = errors.New("zabbix: failed to send")

	// ErrReceive is returned when reading the acknowledgment failed.
	ErrReceive = errors.New("zabbix: failed to receive")

	// ErrMalformedResponse is returned when the acknowledgment is truncated or is not a JSON object.
	ErrMalformedResponse = errors.New("zabbix: malformed response")
)
