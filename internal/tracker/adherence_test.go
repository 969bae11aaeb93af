package tracker

import (
	"testing"
	"time"

	"medication-tracker-server/internal/models"

	"github.com/google/go-cmp/cmp"
)

func TestPercentage(t *testing.T) {
	testCases := []struct {
		taken, total int
		want         int
	}{
		{3, 4, 75},
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{4, 4, 100},
	}
	for _, tc := range testCases {
		if got := Percentage(tc.taken, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.taken, tc.total, got, tc.want)
		}
	}
}

func logAt(ts time.Time, status models.DoseStatus) models.AdherenceLog {
	return models.AdherenceLog{MedicationID: "m1", ScheduledDateTime: ts.UnixMilli(), Status: status}
}

func TestSummarizeWeek(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	logs := []models.AdherenceLog{
		logAt(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), models.DoseTaken),
		logAt(time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), models.DoseTaken),
		logAt(time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), models.DoseSkipped),
		logAt(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), models.DoseTaken),
	}

	got := SummarizeWeek(now, logs)
	want := WeeklyAdherence{
		OverallAdherence: 75,
		TotalDoses:       4,
		TakenDoses:       3,
		DailyStats: map[string]*DayStats{
			"2024-03-04": {Total: 1, Taken: 1},
			"2024-03-05": {},
			"2024-03-06": {},
			"2024-03-07": {},
			"2024-03-08": {},
			"2024-03-09": {Total: 2, Taken: 1},
			"2024-03-10": {Total: 1, Taken: 1},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("Bad summary; diff (-got +want)\n%s", diff)
	}
}

func TestSummarizeWeekUnbucketedLogsStillCount(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	logs := []models.AdherenceLog{
		logAt(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), models.DoseSkipped),
		// Tomorrow's slot, logged ahead of time.
		logAt(time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC), models.DoseTaken),
	}

	got := SummarizeWeek(now, logs)
	if got.TotalDoses != 2 || got.TakenDoses != 1 || got.OverallAdherence != 50 {
		t.Errorf("Bad totals; got %d/%d (%d%%), want 1/2 (50%%)", got.TakenDoses, got.TotalDoses, got.OverallAdherence)
	}
	if _, ok := got.DailyStats["2024-03-11"]; ok {
		t.Errorf("Future date got a chart bucket")
	}
	if len(got.DailyStats) != WeeklyWindowDays {
		t.Errorf("Got %d buckets, want %d", len(got.DailyStats), WeeklyWindowDays)
	}
	var charted int
	for _, stats := range got.DailyStats {
		charted += stats.Total
	}
	if charted != 1 {
		t.Errorf("Charted %d logs, want 1", charted)
	}
}

func TestSummarizeMedication(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var logs []models.AdherenceLog
	for i := 0; i < 12; i++ {
		status := models.DoseTaken
		if i%4 == 0 {
			status = models.DoseSkipped
		}
		logs = append(logs, logAt(start.Add(time.Duration(i)*time.Hour), status))
	}

	got := SummarizeMedication(logs)
	if got.TotalDoses != 12 || got.TakenDoses != 9 || got.AdherencePercentage != 75 {
		t.Errorf("Bad totals; got %d/%d (%d%%), want 9/12 (75%%)", got.TakenDoses, got.TotalDoses, got.AdherencePercentage)
	}
	if diff := cmp.Diff(got.Logs, logs[2:]); diff != "" {
		t.Errorf("Bad recent logs; diff (-got +want)\n%s", diff)
	}
}

func TestSummarizeMedicationEmpty(t *testing.T) {
	got := SummarizeMedication(nil)
	want := MedicationAdherence{Logs: []models.AdherenceLog{}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad summary; diff (-got +want)\n%s", diff)
	}
}
