package sender

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Response is the decoded acknowledgment. Its shape belongs to the server, so it is kept as a
// generic mapping; typically it holds "response" and "info".
type Response map[string]interface{}

// Status returns the "response" field, e.g. "success" or "failed".
func (r Response) Status() string {
	s, _ := r["response"].(string)
	return s
}

// Success reports whether the server accepted the request.
func (r Response) Success() bool {
	return r.Status() == "success"
}

// InfoText returns the raw "info" field.
func (r Response) InfoText() string {
	s, _ := r["info"].(string)
	return s
}

// Info parses the "info" field of the response.
func (r Response) Info() (Info, error) {
	return ParseInfo(r.InfoText())
}

// Info holds the counters the server reports for a processed request.
type Info struct {
	Processed    int
	Failed       int
	Total        int
	SecondsSpent float64
}

// ParseInfo parses text of the form "processed: 1; failed: 0; total: 1; seconds spent: 0.000010".
// Unknown entries are ignored.
func ParseInfo(text string) (Info, error) {
	var info Info
	if strings.TrimSpace(text) == "" {
		return info, fmt.Errorf("empty info")
	}

	for _, part := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			return info, fmt.Errorf("invalid info entry %q", strings.TrimSpace(part))
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		var err error
		switch name {
		case "processed":
			info.Processed, err = strconv.Atoi(value)
		case "failed":
			info.Failed, err = strconv.Atoi(value)
		case "total":
			info.Total, err = strconv.Atoi(value)
		case "seconds spent":
			info.SecondsSpent, err = strconv.ParseFloat(value, 64)
		}
		if err != nil {
			return info, fmt.Errorf("invalid info entry %q: %w", name, err)
		}
	}
	return info, nil
}

func decodeResponse(payload []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedResponse)
	}
	return resp, nil
}
