package admission

import (
	"fmt"
	"strings"
)

// Priority orders pending tasks. Lower values run first.
type Priority int

// Priority classes.
const (
	Critical   Priority = 1
	High       Priority = 3
	Normal     Priority = 5
	Low        Priority = 7
	Background Priority = 10
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	case Background:
		return "background"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority maps a class name to its Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return Critical, nil
	case "high":
		return High, nil
	case "normal", "":
		return Normal, nil
	case "low":
		return Low, nil
	case "background":
		return Background, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}
