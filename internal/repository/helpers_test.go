package repository

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/DATA-DOG/go-sqlmock"
)

// payloadCapture matches any JSON snapshot payload and decodes it into out
// so tests can assert on what was written.
func payloadCapture(out interface{}) sqlmock.Argument {
	return jsonCapture{out: out}
}

type jsonCapture struct {
	out interface{}
}

func (c jsonCapture) Match(v driver.Value) bool {
	var raw []byte
	switch value := v.(type) {
	case []byte:
		raw = value
	case string:
		raw = []byte(value)
	default:
		return false
	}
	return json.Unmarshal(raw, c.out) == nil
}
