package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	protocol "github.com/influxdata/line-protocol"
	"github.com/rs/zerolog"
)

const DefaultPort = 10051

// Dialer opens the connection used for a single exchange. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Config struct {
	Server string
	// Port defaults to DefaultPort when zero.
	Port int
	// Timeout bounds the whole exchange, dial included. Zero means no limit beyond the context.
	Timeout time.Duration
	// Compress sends zlib compressed packets, supported by servers since 4.0.
	Compress bool
	// MaxResponseSize caps how much of the acknowledgment is read. Defaults to DefaultMaxResponseSize.
	MaxResponseSize int64
	Logger          *zerolog.Logger
	Dialer          Dialer
}

// Sender accumulates data points and submits them to a Zabbix server or proxy.
// It is not safe for concurrent use.
type Sender struct {
	config   Config
	address  string
	logger   zerolog.Logger
	data     []DataPoint
	response Response
}

// New creates a sender for server. A port of zero or less selects DefaultPort.
// Unlike NewSender the target is not validated.
func New(server string, port int) *Sender {
	if port <= 0 {
		port = DefaultPort
	}
	return newSender(Config{Server: server, Port: port})
}

// NewSender creates a sender from config. No connection is made until Send.
func NewSender(config Config) (*Sender, error) {
	if config.Server == "" {
		return nil, fmt.Errorf("%w: server is required", ErrInvalidConfig)
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, config.Port)
	}
	if config.Timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return newSender(config), nil
}

func newSender(config Config) *Sender {
	if config.MaxResponseSize <= 0 {
		config.MaxResponseSize = DefaultMaxResponseSize
	}
	if config.Dialer == nil {
		config.Dialer = &net.Dialer{}
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	address := net.JoinHostPort(config.Server, strconv.Itoa(config.Port))
	return &Sender{
		config:   config,
		address:  address,
		logger:   logger.With().Str("server", address).Logger(),
		response: Response{},
	}
}

// Address returns the host:port the sender submits to.
func (s *Sender) Address() string {
	return s.address
}

// AddDataPoint queues a value without a timestamp.
func (s *Sender) AddDataPoint(host, key string, value interface{}) *Sender {
	return s.add(NewDataPoint(host, key, value))
}

// AddDataPointAt queues a value observed at t.
func (s *Sender) AddDataPointAt(host, key string, value interface{}, t time.Time) *Sender {
	return s.add(NewDataPoint(host, key, value).At(t))
}

// AddDataPointClock queues a value with a unix timestamp in seconds. A zero clock is treated as absent.
func (s *Sender) AddDataPointClock(host, key string, value interface{}, clock int64) *Sender {
	point := NewDataPoint(host, key, value)
	point.Clock = clock
	return s.add(point)
}

// AddMetric queues one data point per field of m, see DataPointsFromMetric.
func (s *Sender) AddMetric(host string, m protocol.Metric) *Sender {
	for _, point := range DataPointsFromMetric(host, m) {
		s.add(point)
	}
	return s
}

func (s *Sender) add(point DataPoint) *Sender {
	s.data = append(s.data, point)
	return s
}

// Len returns the number of queued data points.
func (s *Sender) Len() int {
	return len(s.data)
}

// Pending returns a copy of the queued data points in insertion order.
func (s *Sender) Pending() []DataPoint {
	pending := make([]DataPoint, len(s.data))
	copy(pending, s.data)
	return pending
}

// Clear discards the queued data points.
func (s *Sender) Clear() {
	s.data = nil
}

// Response returns the last acknowledgment received. It is empty until a Send received one and
// keeps its previous value when the server closes without replying.
func (s *Sender) Response() Response {
	return s.response
}

// BuildRequest encodes the queued data points as a sender data request.
func (s *Sender) BuildRequest() ([]byte, error) {
	data := s.data
	if data == nil {
		data = []DataPoint{}
	}

	body, err := json.Marshal(Request{Request: RequestSenderData, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return body, nil
}

// Send submits all queued data points in one request over a new connection and stores the
// server's acknowledgment.
//
// On ErrInvalidValue and ErrConnect nothing was transmitted and the batch is kept for a retry.
// Once the request has been written, or the write was attempted, the batch is cleared whatever
// the outcome.
func (s *Sender) Send(ctx context.Context) error {
	body, err := s.BuildRequest()
	if err != nil {
		return err
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	points := len(s.data)
	s.logger.Debug().Int("points", points).Msg("connecting")

	conn, err := s.config.Dialer.DialContext(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}
	}
	// unblock reads and writes when ctx is canceled without a deadline
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	defer s.Clear()
	if err := WritePacket(conn, body, s.config.Compress); err != nil {
		return withContext(ctx, fmt.Errorf("%w: %w", ErrTransmit, err))
	}
	s.logger.Debug().Int("points", points).Int("bytes", len(body)).Bool("compressed", s.config.Compress).Msg("request sent")

	payload, err := ReadPacket(conn, s.config.MaxResponseSize)
	if err != nil {
		return withContext(ctx, err)
	}
	if payload == nil {
		s.logger.Warn().Msg("server closed the connection without a response")
		return nil
	}

	resp, err := decodeResponse(payload)
	if err != nil {
		return err
	}
	s.response = resp
	s.logger.Debug().Str("response", resp.Status()).Str("info", resp.InfoText()).Msg("response received")
	return nil
}

// withContext adds the context's error to err once ctx is done, so that callers can match
// context.Canceled or context.DeadlineExceeded.
func withContext(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", err, ctxErr)
	}
	return err
}
