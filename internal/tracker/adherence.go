package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"medication-tracker-server/internal/models"
)

const (
	day = 24 * time.Hour

	// WeeklyWindowDays is the trailing window of WeeklyAdherence.
	WeeklyWindowDays = 7
	// RecentLogLimit caps the logs returned with per-medication stats.
	RecentLogLimit = 10
)

// DayStats counts the logs scheduled on one date.
type DayStats struct {
	Total int `json:"total"`
	Taken int `json:"taken"`
}

// WeeklyAdherence summarizes a user's logs over the trailing week.
type WeeklyAdherence struct {
	OverallAdherence int                  `json:"overallAdherence"`
	TotalDoses       int                  `json:"totalDoses"`
	TakenDoses       int                  `json:"takenDoses"`
	DailyStats       map[string]*DayStats `json:"dailyStats"`
}

// MedicationAdherence summarizes one medication's logs. Logs holds at most the
// RecentLogLimit latest entries, not the whole window.
type MedicationAdherence struct {
	TotalDoses          int                   `json:"totalDoses"`
	TakenDoses          int                   `json:"takenDoses"`
	AdherencePercentage int                   `json:"adherencePercentage"`
	Logs                []models.AdherenceLog `json:"logs"`
}

// Percentage is round(100*taken/total), or 0 when there is nothing to count.
func Percentage(taken, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(taken) / float64(total)))
}

func countTaken(logs []models.AdherenceLog) int {
	taken := 0
	for i := range logs {
		if logs[i].Status == models.DoseTaken {
			taken++
		}
	}
	return taken
}

func isoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SummarizeWeek aggregates logs for the week ending at now. The chart buckets
// are the seven UTC dates of now-6d through now. A log whose own date has no
// bucket is left off the chart but still counts toward the totals.
func SummarizeWeek(now time.Time, logs []models.AdherenceLog) WeeklyAdherence {
	taken := countTaken(logs)
	summary := WeeklyAdherence{
		OverallAdherence: Percentage(taken, len(logs)),
		TotalDoses:       len(logs),
		TakenDoses:       taken,
		DailyStats:       make(map[string]*DayStats, WeeklyWindowDays),
	}

	for i := WeeklyWindowDays - 1; i >= 0; i-- {
		summary.DailyStats[isoDate(now.Add(-time.Duration(i)*day))] = &DayStats{}
	}

	for i := range logs {
		bucket, ok := summary.DailyStats[isoDate(time.UnixMilli(logs[i].ScheduledDateTime))]
		if !ok {
			continue
		}
		bucket.Total++
		if logs[i].Status == models.DoseTaken {
			bucket.Taken++
		}
	}

	return summary
}

// SummarizeMedication aggregates logs ordered by scheduled time. The recent
// logs are the tail of that order.
func SummarizeMedication(logs []models.AdherenceLog) MedicationAdherence {
	taken := countTaken(logs)
	recent := logs
	if len(recent) > RecentLogLimit {
		recent = recent[len(recent)-RecentLogLimit:]
	}
	if recent == nil {
		recent = []models.AdherenceLog{}
	}
	return MedicationAdherence{
		TotalDoses:          len(logs),
		TakenDoses:          taken,
		AdherencePercentage: Percentage(taken, len(logs)),
		Logs:                recent,
	}
}

// WeeklyAdherence aggregates every log the user has scheduled since a week ago.
func (s *Service) WeeklyAdherence(ctx context.Context, userID string) (WeeklyAdherence, error) {
	now := s.now()
	since := now.Add(-WeeklyWindowDays * day).UnixMilli()

	var logs []models.AdherenceLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND scheduled_date_time >= ?", userID, since).
		Order("scheduled_date_time asc").
		Find(&logs).Error
	if err != nil {
		return WeeklyAdherence{}, fmt.Errorf("while loading adherence logs: %w", err)
	}

	return SummarizeWeek(now, logs), nil
}

// MedicationAdherence aggregates one owned medication's logs over the trailing
// days. days == 0 means a week. Logs are ordered by scheduled time, so the
// recent logs are the RecentLogLimit latest slots, not the latest writes.
func (s *Service) MedicationAdherence(ctx context.Context, userID, medicationID string, days int) (MedicationAdherence, error) {
	if days == 0 {
		days = WeeklyWindowDays
	}
	if days < 0 {
		return MedicationAdherence{}, ErrInvalidWindow
	}

	if _, err := s.Medication(ctx, userID, medicationID); err != nil {
		return MedicationAdherence{}, err
	}

	since := s.now().Add(-time.Duration(days) * day).UnixMilli()

	var logs []models.AdherenceLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND medication_id = ? AND scheduled_date_time >= ?", userID, medicationID, since).
		Order("scheduled_date_time asc").
		Find(&logs).Error
	if err != nil {
		return MedicationAdherence{}, fmt.Errorf("while loading logs for medication %s: %w", medicationID, err)
	}

	return SummarizeMedication(logs), nil
}
