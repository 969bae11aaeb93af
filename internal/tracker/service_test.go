package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medication-tracker-server/internal/models"

	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"
)

type recordingObserver struct {
	mu  sync.Mutex
	ids []string
}

func (o *recordingObserver) MedicationAdded(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ids = append(o.ids, id)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: models.DriverSQLite,
		DSN:    "file:" + models.NewID() + "?mode=memory&cache=shared",
		Silent: true,
	})
	if err != nil {
		t.Fatalf("Unexpected error opening database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T, now time.Time) (*Service, *gorm.DB, *recordingObserver) {
	t.Helper()
	db := newTestDB(t)
	observer := &recordingObserver{}
	svc := NewService(db, observer).WithClock(func() time.Time { return now })
	return svc, db, observer
}

func addMedication(t *testing.T, svc *Service, userID, name string, quantity int) *models.Medication {
	t.Helper()
	medication, err := svc.AddMedication(context.Background(), userID, NewMedication{
		Name:            name,
		Dosage:          "10mg",
		Form:            "tablet",
		Frequency:       "daily",
		InitialQuantity: quantity,
	})
	if err != nil {
		t.Fatalf("Unexpected error adding %s: %v", name, err)
	}
	return medication
}

func currentQuantity(t *testing.T, db *gorm.DB, medicationID string) int {
	t.Helper()
	var medication models.Medication
	if err := db.First(&medication, "id = ?", medicationID).Error; err != nil {
		t.Fatalf("Unexpected error loading medication: %v", err)
	}
	return medication.CurrentQuantity
}

var monday = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestAddMedicationFreePlanLimit(t *testing.T) {
	ctx := context.Background()
	svc, _, observer := newTestService(t, monday)

	var added []string
	for _, name := range []string{"Aspirin", "Metformin", "Lisinopril"} {
		added = append(added, addMedication(t, svc, "u1", name, 30).ID)
	}

	_, err := svc.AddMedication(ctx, "u1", NewMedication{Name: "Atorvastatin", InitialQuantity: 30})
	if !errors.Is(err, ErrMedicationLimitReached) {
		t.Fatalf("Fourth medication on the free plan; got err %v, want %v", err, ErrMedicationLimitReached)
	}

	// Other users are counted separately.
	addMedication(t, svc, "u2", "Aspirin", 30)

	if err := svc.DeactivateMedication(ctx, "u1", added[0]); err != nil {
		t.Fatalf("Unexpected error deactivating: %v", err)
	}
	added = append(added, addMedication(t, svc, "u1", "Atorvastatin", 30).ID)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.ids) != 5 {
		t.Fatalf("Observer heard %d medications, want 5", len(observer.ids))
	}
	if diff := cmp.Diff(observer.ids[:3], added[:3]); diff != "" {
		t.Errorf("Bad notifications; diff (-got +want)\n%s", diff)
	}
}

func TestAddMedicationInitialState(t *testing.T) {
	svc, _, _ := newTestService(t, monday)
	medication := addMedication(t, svc, "u1", "Aspirin", 20)

	if !medication.IsActive || !medication.RefillReminder {
		t.Errorf("New medication should be active with refill reminders on; got %+v", medication)
	}
	if medication.CurrentQuantity != 20 || medication.InitialQuantity != 20 {
		t.Errorf("Bad quantities; got %d/%d, want 20/20", medication.CurrentQuantity, medication.InitialQuantity)
	}
	if !medication.PrescribedDate.Equal(monday) {
		t.Errorf("Bad prescribed date; got %v, want %v", medication.PrescribedDate, monday)
	}
}

func TestAddMedicationPremiumUnlimited(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, monday)

	subscription, err := svc.ChangePlan(ctx, "u1", models.PlanPremium)
	if err != nil {
		t.Fatalf("Unexpected error changing plan: %v", err)
	}
	if subscription.MedicationLimit != 0 {
		t.Errorf("Premium limit = %d, want 0", subscription.MedicationLimit)
	}

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		addMedication(t, svc, "u1", name, 10)
	}

	// Downgrading keeps existing medications but blocks new ones.
	if _, err := svc.ChangePlan(ctx, "u1", models.PlanFree); err != nil {
		t.Fatalf("Unexpected error changing plan: %v", err)
	}
	if _, err := svc.AddMedication(ctx, "u1", NewMedication{Name: "F"}); !errors.Is(err, ErrMedicationLimitReached) {
		t.Errorf("Add after downgrade; got err %v, want %v", err, ErrMedicationLimitReached)
	}
	medications, err := svc.ActiveMedications(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error listing: %v", err)
	}
	if len(medications) != 5 {
		t.Errorf("Got %d active medications, want 5", len(medications))
	}
}

func TestSubscription(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t, monday)

	subscription, err := svc.Subscription(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if subscription.Plan != models.PlanFree || subscription.MedicationLimit != models.FreeMedicationLimit {
		t.Errorf("Default subscription = %+v, want the free plan", subscription)
	}

	if _, err := svc.ChangePlan(ctx, "u1", models.Plan("gold")); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("Got err %v, want %v", err, ErrInvalidPlan)
	}

	for _, plan := range []models.Plan{models.PlanPremium, models.PlanFree, models.PlanPremium} {
		if _, err := svc.ChangePlan(ctx, "u1", plan); err != nil {
			t.Fatalf("Unexpected error changing plan: %v", err)
		}
	}

	var active int64
	db.Model(&models.Subscription{}).Where("user_id = ? AND is_active = ?", "u1", true).Count(&active)
	if active != 1 {
		t.Errorf("Got %d active subscriptions, want 1", active)
	}
	subscription, err = svc.Subscription(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if subscription.Plan != models.PlanPremium {
		t.Errorf("Plan = %q, want %q", subscription.Plan, models.PlanPremium)
	}
}

func TestLogDoseUpsertsSlot(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t, monday)
	medication := addMedication(t, svc, "u1", "Aspirin", 2)
	slot := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC).UnixMilli()

	steps := []struct {
		status       models.DoseStatus
		notes        string
		wantQuantity int
	}{
		{models.DoseTaken, "", 1},
		{models.DoseSkipped, "felt sick", 1},
		{models.DoseTaken, "", 0},
		{models.DoseTaken, "again", 0},
	}
	for i, step := range steps {
		err := svc.LogDose(ctx, "u1", DoseLog{
			MedicationID:      medication.ID,
			ScheduledDateTime: slot,
			Status:            step.status,
			Notes:             step.notes,
		})
		if err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i, err)
		}
		if got := currentQuantity(t, db, medication.ID); got != step.wantQuantity {
			t.Errorf("Step %d: quantity = %d, want %d", i, got, step.wantQuantity)
		}
	}

	var logs []models.AdherenceLog
	if err := db.Where("medication_id = ?", medication.ID).Find(&logs).Error; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Got %d logs for one slot, want 1", len(logs))
	}
	if logs[0].Status != models.DoseTaken || logs[0].Notes != "again" {
		t.Errorf("Bad log; got status %q notes %q", logs[0].Status, logs[0].Notes)
	}
	if logs[0].ActualDateTime == nil || *logs[0].ActualDateTime != monday.UnixMilli() {
		t.Errorf("Bad actual time; got %v, want %d", logs[0].ActualDateTime, monday.UnixMilli())
	}
}

func TestLogDoseRejects(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, monday)
	medication := addMedication(t, svc, "u1", "Aspirin", 2)

	err := svc.LogDose(ctx, "u1", DoseLog{MedicationID: medication.ID, ScheduledDateTime: 1, Status: models.DosePending})
	if !errors.Is(err, ErrInvalidDoseStatus) {
		t.Errorf("Pending status; got err %v, want %v", err, ErrInvalidDoseStatus)
	}

	err = svc.LogDose(ctx, "u2", DoseLog{MedicationID: medication.ID, ScheduledDateTime: 1, Status: models.DoseTaken})
	if !errors.Is(err, ErrMedicationNotFound) {
		t.Errorf("Other user's medication; got err %v, want %v", err, ErrMedicationNotFound)
	}
}

func TestAdjustQuantity(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t, monday)
	medication := addMedication(t, svc, "u1", "Aspirin", 2)

	got, err := svc.AdjustQuantity(ctx, "u1", medication.ID, 5)
	if err != nil || got != 7 {
		t.Errorf("Refill; got (%d, %v), want (7, nil)", got, err)
	}
	got, err = svc.AdjustQuantity(ctx, "u1", medication.ID, -100)
	if err != nil || got != 0 {
		t.Errorf("Overdraw; got (%d, %v), want (0, nil)", got, err)
	}
	if q := currentQuantity(t, db, medication.ID); q != 0 {
		t.Errorf("Stored quantity = %d, want 0", q)
	}
	if _, err := svc.AdjustQuantity(ctx, "u2", medication.ID, 1); !errors.Is(err, ErrMedicationNotFound) {
		t.Errorf("Other user's medication; got err %v, want %v", err, ErrMedicationNotFound)
	}
}

func TestSchedules(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, monday)
	aspirin := addMedication(t, svc, "u1", "Aspirin", 10)
	metformin := addMedication(t, svc, "u1", "Metformin", 10)

	if _, err := svc.CreateSchedule(ctx, "u1", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: "8:00pm", Days: []string{"monday"}}); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Errorf("Bad time; got err %v, want %v", err, ErrInvalidTimeOfDay)
	}
	if _, err := svc.CreateSchedule(ctx, "u1", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: "08:00", Days: []string{"Monday"}}); !errors.Is(err, ErrInvalidDays) {
		t.Errorf("Capitalized day; got err %v, want %v", err, ErrInvalidDays)
	}
	if _, err := svc.CreateSchedule(ctx, "u2", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: "08:00", Days: []string{"monday"}}); !errors.Is(err, ErrMedicationNotFound) {
		t.Errorf("Other user's medication; got err %v, want %v", err, ErrMedicationNotFound)
	}

	evening, err := svc.CreateSchedule(ctx, "u1", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: "20:00", Days: []string{"monday", "friday"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	morning, err := svc.CreateSchedule(ctx, "u1", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: "08:00", Days: []string{"monday"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	updated, err := svc.UpdateSchedule(ctx, "u1", evening.ID, ScheduleInput{MedicationID: metformin.ID, ScheduledTime: "21:30", Days: []string{"sunday"}})
	if err != nil {
		t.Fatalf("Unexpected error updating: %v", err)
	}
	if updated.MedicationID != metformin.ID || updated.ScheduledTime != "21:30" || !updated.OnDay("sunday") || updated.OnDay("monday") {
		t.Errorf("Bad update; got %+v", updated)
	}

	if err := svc.DeactivateSchedule(ctx, "u2", morning.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("Other user's schedule; got err %v, want %v", err, ErrScheduleNotFound)
	}
	if err := svc.DeactivateSchedule(ctx, "u1", morning.ID); err != nil {
		t.Fatalf("Unexpected error deactivating: %v", err)
	}

	entries, err := svc.Schedules(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error listing: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != evening.ID {
		t.Errorf("Want only the updated evening entry; got %+v", entries)
	}
}

func TestTodaySchedule(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, monday)
	aspirin := addMedication(t, svc, "u1", "Aspirin", 10)
	addMedication(t, svc, "u2", "Someone else's", 10)

	for _, in := range []ScheduleInput{
		{MedicationID: aspirin.ID, ScheduledTime: "20:00", Days: []string{"monday"}},
		{MedicationID: aspirin.ID, ScheduledTime: "08:00", Days: []string{"monday", "tuesday"}},
		{MedicationID: aspirin.ID, ScheduledTime: "12:00", Days: []string{"tuesday"}},
	} {
		if _, err := svc.CreateSchedule(ctx, "u1", in); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	morning := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC).UnixMilli()
	if err := svc.LogDose(ctx, "u1", DoseLog{MedicationID: aspirin.ID, ScheduledDateTime: morning, Status: models.DoseTaken}); err != nil {
		t.Fatalf("Unexpected error logging: %v", err)
	}
	// Yesterday's log for the same time of day must not leak into today.
	yesterday := time.Date(2024, 3, 3, 20, 0, 0, 0, time.UTC).UnixMilli()
	if err := svc.LogDose(ctx, "u1", DoseLog{MedicationID: aspirin.ID, ScheduledDateTime: yesterday, Status: models.DoseSkipped}); err != nil {
		t.Fatalf("Unexpected error logging: %v", err)
	}

	doses, err := svc.TodaySchedule(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var got []string
	for _, dose := range doses {
		got = append(got, dose.ScheduledTime+" "+string(dose.Status))
	}
	want := []string{"08:00 taken", "20:00 pending"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad schedule; diff (-got +want)\n%s", diff)
	}

	other, err := svc.TodaySchedule(ctx, "u3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("User without schedules got %d doses", len(other))
	}
}

func TestWeeklyAndMedicationAdherence(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)
	aspirin := addMedication(t, svc, "u1", "Aspirin", 30)
	metformin := addMedication(t, svc, "u1", "Metformin", 30)

	for _, l := range []struct {
		medicationID string
		at           time.Time
		status       models.DoseStatus
	}{
		{aspirin.ID, time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), models.DoseTaken},
		{aspirin.ID, time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), models.DoseSkipped},
		{metformin.ID, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), models.DoseTaken},
		{metformin.ID, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), models.DoseTaken},
		// Outside the week.
		{aspirin.ID, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), models.DoseSkipped},
	} {
		err := svc.LogDose(ctx, "u1", DoseLog{MedicationID: l.medicationID, ScheduledDateTime: l.at.UnixMilli(), Status: l.status})
		if err != nil {
			t.Fatalf("Unexpected error logging: %v", err)
		}
	}

	weekly, err := svc.WeeklyAdherence(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if weekly.OverallAdherence != 75 || weekly.TotalDoses != 4 || weekly.TakenDoses != 3 {
		t.Errorf("Bad weekly totals; got %+v", weekly)
	}
	if diff := cmp.Diff(weekly.DailyStats["2024-03-09"], &DayStats{Total: 2, Taken: 1}); diff != "" {
		t.Errorf("Bad bucket; diff (-got +want)\n%s", diff)
	}

	stats, err := svc.MedicationAdherence(ctx, "u1", aspirin.ID, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.TotalDoses != 2 || stats.AdherencePercentage != 50 || len(stats.Logs) != 2 {
		t.Errorf("Bad week stats; got %+v", stats)
	}

	stats, err = svc.MedicationAdherence(ctx, "u1", aspirin.ID, 30)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.TotalDoses != 3 || stats.TakenDoses != 1 || stats.AdherencePercentage != 33 {
		t.Errorf("Bad month stats; got %+v", stats)
	}

	if _, err := svc.MedicationAdherence(ctx, "u1", aspirin.ID, -1); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Negative window; got err %v, want %v", err, ErrInvalidWindow)
	}
	if _, err := svc.MedicationAdherence(ctx, "u2", aspirin.ID, 7); !errors.Is(err, ErrMedicationNotFound) {
		t.Errorf("Other user's medication; got err %v, want %v", err, ErrMedicationNotFound)
	}

	empty, err := svc.WeeklyAdherence(ctx, "u2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if empty.OverallAdherence != 0 || len(empty.DailyStats) != WeeklyWindowDays {
		t.Errorf("Bad empty summary; got %+v", empty)
	}
}

func TestInteractionsFromStore(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t, monday)
	warfarin := addMedication(t, svc, "u1", "Warfarin", 30)
	aspirin := addMedication(t, svc, "u1", "Aspirin", 30)
	ibuprofen := addMedication(t, svc, "u1", "Ibuprofen", 30)

	interactions := []models.Interaction{
		{UserID: "u1", Medication1ID: warfarin.ID, Medication2ID: ibuprofen.ID, Severity: models.SeverityModerate, Description: "m", DateChecked: monday},
		{UserID: "u1", Medication1ID: warfarin.ID, Medication2ID: aspirin.ID, Severity: models.SeverityCritical, Description: "Bleeding risk", DateChecked: monday.Add(time.Minute)},
		{UserID: "u2", Medication1ID: warfarin.ID, Medication2ID: aspirin.ID, Severity: models.SeverityCritical, Description: "other user", DateChecked: monday},
	}
	if err := db.Create(&interactions).Error; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Deactivated medications still resolve.
	if err := svc.DeactivateMedication(ctx, "u1", aspirin.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	enriched, err := svc.Interactions(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var got []string
	for _, e := range enriched {
		got = append(got, string(e.Severity)+" "+e.Medication1Name+"+"+e.Medication2Name)
	}
	want := []string{"critical Warfarin+Aspirin", "moderate Warfarin+Ibuprofen"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad interactions; diff (-got +want)\n%s", diff)
	}

	alerts, err := svc.CriticalAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Message != "Warfarin and Aspirin: Bleeding risk" || alerts[0].ID != interactions[1].ID {
		t.Errorf("Bad alerts; got %+v", alerts)
	}

	none, err := svc.Interactions(ctx, "u3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Want an empty, non-nil list; got %#v", none)
	}
}

func TestSchedulesRequirePaddedTimes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, monday)
	aspirin := addMedication(t, svc, "u1", "Aspirin", 10)

	for _, at := range []string{"9:05", "+8:00", "08:5"} {
		_, err := svc.CreateSchedule(ctx, "u1", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: at, Days: []string{"monday"}})
		if !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Errorf("CreateSchedule(%q); got err %v, want %v", at, err, ErrInvalidTimeOfDay)
		}
	}

	for _, at := range []string{"10:00", "09:05", "08:00"} {
		if _, err := svc.CreateSchedule(ctx, "u1", ScheduleInput{MedicationID: aspirin.ID, ScheduledTime: at, Days: []string{"monday"}}); err != nil {
			t.Fatalf("CreateSchedule(%q): unexpected error: %v", at, err)
		}
	}

	entries, err := svc.Schedules(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error listing: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.ScheduledTime)
	}
	if diff := cmp.Diff(got, []string{"08:00", "09:05", "10:00"}); diff != "" {
		t.Errorf("Bad order; diff (-got +want)\n%s", diff)
	}
}

func TestLogDoseConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t, monday)
	medication := addMedication(t, svc, "u1", "Aspirin", 1)
	slot := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC).UnixMilli()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.LogDose(ctx, "u1", DoseLog{MedicationID: medication.ID, ScheduledDateTime: slot, Status: models.DoseTaken})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Unexpected error logging: %v", err)
		}
	}

	var rows int64
	if err := db.Model(&models.AdherenceLog{}).
		Where("user_id = ? AND medication_id = ? AND scheduled_date_time = ?", "u1", medication.ID, slot).
		Count(&rows).Error; err != nil {
		t.Fatalf("Unexpected error counting: %v", err)
	}
	if rows != 1 {
		t.Errorf("Got %d logs for one slot, want 1", rows)
	}
	if q := currentQuantity(t, db, medication.ID); q != 0 {
		t.Errorf("Quantity = %d, want 0", q)
	}
}
