package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ryanreadbooks/zaikit/component/tool"
)

type DatetimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"description=IANA timezone such as Asia/Tokyo. Defaults to local"`
}

type DatetimeOutput struct {
	Timezone   string `json:"timezone"`
	Datetime   string `json:"datetime"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	DayOfWeek  string `json:"day_of_week"`
	WeekNumber int    `json:"week_number"`
	IsWeekend  bool   `json:"is_weekend"`
}

func describeTime(now time.Time, tz string) *DatetimeOutput {
	_, week := now.ISOWeek()
	wd := now.Weekday()
	return &DatetimeOutput{
		Timezone:   tz,
		Datetime:   now.Format(time.RFC3339),
		Date:       now.Format(time.DateOnly),
		Time:       now.Format(time.TimeOnly),
		DayOfWeek:  wd.String(),
		WeekNumber: week,
		IsWeekend:  wd == time.Saturday || wd == time.Sunday,
	}
}

// CurrentDatetime reports the time from now, which is time.Now when nil.
func CurrentDatetime(now func() time.Time) tool.Invoker {
	if now == nil {
		now = time.Now
	}

	return tool.NewInvoker(tool.Info{
		Name:        "get_current_datetime",
		Description: "Get the current date and time, including day of week and week number",
	}, func(ctx context.Context, input DatetimeInput) (*DatetimeOutput, error) {
		tz := strings.TrimSpace(input.Timezone)
		t := now()
		if tz == "" || strings.EqualFold(tz, "local") {
			return describeTime(t, "local"), nil
		}

		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", tz)
		}
		return describeTime(t.In(loc), tz), nil
	})
}
