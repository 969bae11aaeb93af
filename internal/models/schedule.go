package models

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// Weekday names as stored in ScheduleEntry.Days. Matching is case-sensitive.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// ScheduleEntry is one weekly dose slot: a time of day on a set of weekdays.
// Several doses a day need several entries.
type ScheduleEntry struct {
	BaseModel
	UserID        string                      `gorm:"size:36;not null;index" json:"userId"`
	MedicationID  string                      `gorm:"size:36;not null;index" json:"medicationId"`
	ScheduledTime string                      `gorm:"size:5;not null" json:"scheduledTime"` // "HH:MM"
	Days          datatypes.JSONSlice[string] `json:"days"`
	IsActive      bool                        `gorm:"not null" json:"isActive"`
}

// TableName keeps the original collection name.
func (ScheduleEntry) TableName() string {
	return "medication_schedules"
}

// OnDay reports whether the entry applies to the given lowercase weekday name.
func (s *ScheduleEntry) OnDay(weekday string) bool {
	for _, d := range s.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

// ParseTimeOfDay splits a zero-padded 24-hour "HH:MM" string into hour and
// minute. Stored times sort correctly as strings only in this form.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || !twoDigits(h) || !twoDigits(m) {
		return 0, 0, fmt.Errorf("time of day %q is not HH:MM", s)
	}
	hour, _ = strconv.Atoi(h)
	if hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, _ = strconv.Atoi(m)
	if minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour, minute, nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// IsWeekday reports whether name is one of Weekdays.
func IsWeekday(name string) bool {
	for _, d := range Weekdays {
		if d == name {
			return true
		}
	}
	return false
}
