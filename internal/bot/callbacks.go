package bot

import (
	"fmt"
	"strconv"
	"strings"

	"plan-tracker/internal/datekey"
)

// Callback payloads must fit Telegram's 64-byte limit:
//
//	t:<planID>:<slot>:<date>:<0|1>   toggle from the today view
//	d:<planID>:<slot>:<date>:<0|1>   toggle from a day view
//	c:<planID>:<YYYY-MM>             show a month calendar
const (
	cbTodayPrefix    = "t:"
	cbDayPrefix      = "d:"
	cbCalendarPrefix = "c:"
	cbNoop           = "noop"
)

type toggleRequest struct {
	prefix  string
	planID  string
	slot    int
	date    datekey.Key
	checked bool
}

type calendarRequest struct {
	planID string
	month  string
}

func toggleData(prefix, planID string, slot int, date datekey.Key, checked bool) string {
	flag := "0"
	if checked {
		flag = "1"
	}
	return fmt.Sprintf("%s%s:%d:%s:%s", prefix, planID, slot, date, flag)
}

func parseToggle(data string) (toggleRequest, error) {
	var prefix string
	switch {
	case strings.HasPrefix(data, cbTodayPrefix):
		prefix = cbTodayPrefix
	case strings.HasPrefix(data, cbDayPrefix):
		prefix = cbDayPrefix
	default:
		return toggleRequest{}, fmt.Errorf("not a toggle callback: %q", data)
	}
	parts := strings.Split(strings.TrimPrefix(data, prefix), ":")
	if len(parts) != 4 || parts[0] == "" {
		return toggleRequest{}, fmt.Errorf("malformed toggle callback: %q", data)
	}
	slot, err := strconv.Atoi(parts[1])
	if err != nil || slot < 0 {
		return toggleRequest{}, fmt.Errorf("malformed slot in %q", data)
	}
	date, err := datekey.Parse(parts[2])
	if err != nil {
		return toggleRequest{}, err
	}
	if parts[3] != "0" && parts[3] != "1" {
		return toggleRequest{}, fmt.Errorf("malformed flag in %q", data)
	}
	return toggleRequest{prefix: prefix, planID: parts[0], slot: slot, date: date, checked: parts[3] == "1"}, nil
}

func calendarData(planID, month string) string {
	return cbCalendarPrefix + planID + ":" + month
}

func parseCalendar(data string) (calendarRequest, error) {
	if !strings.HasPrefix(data, cbCalendarPrefix) {
		return calendarRequest{}, fmt.Errorf("not a calendar callback: %q", data)
	}
	raw := strings.TrimPrefix(data, cbCalendarPrefix)
	i := strings.LastIndex(raw, ":")
	if i <= 0 {
		return calendarRequest{}, fmt.Errorf("malformed calendar callback: %q", data)
	}
	month := raw[i+1:]
	if _, err := datekey.ParseMonth(month); err != nil {
		return calendarRequest{}, err
	}
	return calendarRequest{planID: raw[:i], month: month}, nil
}
