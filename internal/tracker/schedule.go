package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"medication-tracker-server/internal/models"
)

// logMatchTolerance is how far a stored log may sit from a computed slot and
// still count as that slot's log. Logging itself matches exactly.
const logMatchTolerance = 60 * time.Second

// ScheduledDose is one expected intake on the day being projected.
type ScheduledDose struct {
	MedicationID      string            `json:"medicationId"`
	MedicationName    string            `json:"medicationName"`
	Dosage            string            `json:"dosage"`
	ScheduledTime     string            `json:"scheduledTime"`
	ScheduledDateTime int64             `json:"scheduledDateTime"`
	Status            models.DoseStatus `json:"status"`
	Notes             string            `json:"notes,omitempty"`
}

// WeekdayName returns the lowercase English weekday of t.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// dayBounds returns the first and last millisecond of t's calendar day in t's
// location.
func dayBounds(t time.Time) (int64, int64) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start.UnixMilli(), start.Add(24*time.Hour).UnixMilli() - 1
}

// BuildDaySchedule projects the doses due on day's calendar date. Entries not
// covering day's weekday, and entries whose medication is not among the active
// medications, produce nothing. Each dose takes the status of a log for the
// same medication within logMatchTolerance, or pending.
func BuildDaySchedule(day time.Time, medications []models.Medication, entries []models.ScheduleEntry, logs []models.AdherenceLog) []ScheduledDose {
	active := make(map[string]*models.Medication, len(medications))
	for i := range medications {
		if medications[i].IsActive {
			active[medications[i].ID] = &medications[i]
		}
	}

	weekday := WeekdayName(day)
	y, m, d := day.Date()

	doses := []ScheduledDose{}
	for i := range entries {
		entry := &entries[i]
		if !entry.IsActive || !entry.OnDay(weekday) {
			continue
		}

		medication, ok := active[entry.MedicationID]
		if !ok {
			continue
		}

		hour, minute, err := models.ParseTimeOfDay(entry.ScheduledTime)
		if err != nil {
			slog.Warn("Skipping schedule entry with bad time", slog.String("schedule", entry.ID), slog.Any("err", err))
			continue
		}
		at := time.Date(y, m, d, hour, minute, 0, 0, day.Location()).UnixMilli()

		dose := ScheduledDose{
			MedicationID:      medication.ID,
			MedicationName:    medication.Name,
			Dosage:            medication.Dosage,
			ScheduledTime:     entry.ScheduledTime,
			ScheduledDateTime: at,
			Status:            models.DosePending,
		}
		if log := matchLog(logs, medication.ID, at); log != nil {
			dose.Status = log.Status
			dose.Notes = log.Notes
		}
		doses = append(doses, dose)
	}

	sort.SliceStable(doses, func(i, j int) bool {
		return doses[i].ScheduledDateTime < doses[j].ScheduledDateTime
	})
	return doses
}

func matchLog(logs []models.AdherenceLog, medicationID string, at int64) *models.AdherenceLog {
	tolerance := logMatchTolerance.Milliseconds()
	for i := range logs {
		if logs[i].MedicationID != medicationID {
			continue
		}
		delta := logs[i].ScheduledDateTime - at
		if delta < 0 {
			delta = -delta
		}
		if delta < tolerance {
			return &logs[i]
		}
	}
	return nil
}

// TodaySchedule returns the caller's doses for the server-local current day.
func (s *Service) TodaySchedule(ctx context.Context, userID string) ([]ScheduledDose, error) {
	now := s.now()
	start, end := dayBounds(now)
	db := s.db.WithContext(ctx)

	medications, err := s.ActiveMedications(ctx, userID)
	if err != nil {
		return nil, err
	}

	var entries []models.ScheduleEntry
	if err := db.Where("user_id = ? AND is_active = ?", userID, true).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("while loading schedules: %w", err)
	}

	var logs []models.AdherenceLog
	err = db.Where("user_id = ? AND scheduled_date_time >= ? AND scheduled_date_time <= ?", userID, start, end).
		Order("scheduled_date_time asc").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("while loading today's logs: %w", err)
	}

	return BuildDaySchedule(now, medications, entries, logs), nil
}
