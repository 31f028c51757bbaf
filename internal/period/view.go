// Package period implements the calendar engine behind the date filter:
// resolving a view and a cursor instant into concrete period boundaries,
// stepping between periods, and bucketing transactions into chart-ready
// aggregates.
//
// Every function is pure. The current instant ("now") is always an
// explicit argument so callers can inject a fixed clock in tests;
// production callers pass time.Now().
package period

import (
	"fmt"
	"strings"
)

// View is the selected calendar granularity of the date filter.
type View string

const (
	Daily    View = "daily"
	Weekly   View = "weekly"
	Monthly  View = "monthly"
	BiYearly View = "bi_yearly"
	Yearly   View = "yearly"
	AllTime  View = "all_time"
)

// Views lists all views in display order.
func Views() []View {
	return []View{Daily, Weekly, Monthly, BiYearly, Yearly, AllTime}
}

// ParseView parses a view string from a URL query parameter.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case BiYearly:
		return BiYearly, nil
	case Yearly:
		return Yearly, nil
	case AllTime:
		return AllTime, nil
	default:
		return Monthly, fmt.Errorf("unknown view %q", s)
	}
}

// DisplayName returns the human-facing name of the view.
func (v View) DisplayName() string {
	switch v {
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	case BiYearly:
		return "Bi-yearly"
	case Yearly:
		return "Yearly"
	case AllTime:
		return "All time"
	default:
		return string(v)
	}
}

func (v View) String() string { return string(v) }
