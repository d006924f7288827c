package handler

import (
	"encoding/json"
	"fmt"
	"time"
)

// flexTime 接受 RFC3339 以及前端常见的日期/日期时间格式，无时区一律按 UTC
type flexTime struct{ time.Time }

var flexLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date: %s", b)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range flexLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date: %q", s)
}
