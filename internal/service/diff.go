package service

import (
	"fmt"
	"strings"
	"time"
)

// FieldPair is one before/after value pair for audit detail formatting.
type FieldPair struct {
	Name   string
	Before string
	After  string
}

// noChangeDetail is recorded when an update touched nothing. The entry is
// written anyway: "someone saved this form" is itself auditable history.
const noChangeDetail = "no fields changed"

// DescribeChanges formats the fields that actually differ into one audit
// detail line. An empty diff is stated explicitly rather than left blank.
func DescribeChanges(pairs []FieldPair) string {
	var parts []string
	for _, p := range pairs {
		if p.Before == p.After {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s -> %s",
			p.Name, displayValue(p.Before), displayValue(p.After)))
	}
	if len(parts) == 0 {
		return noChangeDetail
	}
	return strings.Join(parts, "; ")
}

func displayValue(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

// optStr renders an optional string reference for diffing.
func optStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// optDate renders an optional date for diffing.
func optDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}
