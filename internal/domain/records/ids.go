package records

import (
	"bytes"
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// LocalID identifies a record or sub-record in local storage. Ids are
// millisecond timestamps; older data may carry arbitrary strings. A numeric id
// encodes as a JSON number unless the record it was read from stored it
// quoted.
type LocalID string

func (id LocalID) String() string { return string(id) }

func (id LocalID) MarshalJSON() ([]byte, error) {
	return marshalNumberOrString(string(id))
}

func (id *LocalID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalNumberOrString(data)
	if err != nil {
		return err
	}
	*id = LocalID(s)
	return nil
}

// Amount is a monetary value that forms may submit as a number or a string.
type Amount string

func (a Amount) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(a), 64)
	return v, err == nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return marshalNumberOrString(string(a))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s, err := unmarshalNumberOrString(data)
	if err != nil {
		return err
	}
	*a = Amount(s)
	return nil
}

func marshalNumberOrString(s string) ([]byte, error) {
	if s == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func unmarshalNumberOrString(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		err := json.Unmarshal(trimmed, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// IDGenerator hands out strictly increasing millisecond-based ids even when
// called several times within the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() LocalID {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := g.now().UnixMilli()
	if next <= g.last {
		next = g.last + 1
	}
	g.last = next
	return LocalID(strconv.FormatInt(next, 10))
}

var defaultIDs = NewIDGenerator(nil)

func NewLocalID() LocalID {
	return defaultIDs.Next()
}
