package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is the parsed form of a retailer's configured cron cadence. The ingestion core
// never runs a scheduler itself (spec §5 non-goal: triggering is an external driver's job);
// this exists so that driver can validate a retailer's `schedule` field and compute its next
// fire time without duplicating cron-expression parsing.
type Schedule struct {
	Expression string
	schedule   cron.Schedule
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule validates a retailer's configured cron expression. An empty expression means
// the retailer has no recurring schedule and is only run on demand.
func ParseSchedule(expression string) (*Schedule, error) {
	if expression == "" {
		return &Schedule{}, nil
	}
	sched, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid retailer schedule %q: %w", expression, err)
	}
	return &Schedule{Expression: expression, schedule: sched}, nil
}

// NextRun reports when this schedule next fires after t. Returns the zero time for a
// retailer with no configured schedule.
func (s *Schedule) NextRun(t time.Time) time.Time {
	if s.schedule == nil {
		return time.Time{}
	}
	return s.schedule.Next(t)
}
