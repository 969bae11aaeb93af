package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"medication-tracker-server/internal/drugdata"
	"medication-tracker-server/internal/models"

	"gorm.io/gorm"
)

// InteractionSource labels interactions found by the checker.
const InteractionSource = "OpenFDA"

// Dispatcher turns medication events into background tasks.
type Dispatcher struct {
	queue      *Queue
	db         *gorm.DB
	checker    drugdata.InteractionChecker
	labels     drugdata.LabelSource
	summarizer drugdata.Summarizer
	now        func() time.Time
}

// NewDispatcher wires the drug data sources to the queue.
func NewDispatcher(queue *Queue, db *gorm.DB, checker drugdata.InteractionChecker, labels drugdata.LabelSource, summarizer drugdata.Summarizer) *Dispatcher {
	return &Dispatcher{
		queue:      queue,
		db:         db,
		checker:    checker,
		labels:     labels,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// MedicationAdded queues the interaction check and the FDA data fetch for a
// new medication. The two tasks are independent and unordered.
func (d *Dispatcher) MedicationAdded(medicationID string) {
	for _, t := range []Task{
		&interactionCheck{d: d, medicationID: medicationID},
		&drugDataFetch{d: d, medicationID: medicationID},
	} {
		if err := d.queue.Enqueue(t); err != nil {
			slog.Error("Could not queue background task", slog.String("task", t.Name()), slog.Any("err", err))
		}
	}
}

type interactionCheck struct {
	d            *Dispatcher
	medicationID string
}

func (t *interactionCheck) Name() string { return "check-interactions:" + t.medicationID }

func (t *interactionCheck) Run(ctx context.Context) error {
	return t.d.CheckInteractions(ctx, t.medicationID)
}

type drugDataFetch struct {
	d            *Dispatcher
	medicationID string
}

func (t *drugDataFetch) Name() string { return "fetch-fda-data:" + t.medicationID }

func (t *drugDataFetch) Run(ctx context.Context) error {
	return t.d.FetchDrugData(ctx, t.medicationID)
}

// loadMedication returns nil without error when the medication is gone.
func (d *Dispatcher) loadMedication(ctx context.Context, medicationID string) (*models.Medication, error) {
	var medication models.Medication
	err := d.db.WithContext(ctx).First(&medication, "id = ?", medicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("while loading medication %s: %w", medicationID, err)
	}
	return &medication, nil
}

// CheckInteractions compares a medication against the owner's other active
// medications and records each interaction found. A failing pair is logged
// and skipped.
func (d *Dispatcher) CheckInteractions(ctx context.Context, medicationID string) error {
	medication, err := d.loadMedication(ctx, medicationID)
	if err != nil || medication == nil {
		return err
	}

	var others []models.Medication
	err = d.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND id <> ?", medication.UserID, true, medication.ID).
		Find(&others).Error
	if err != nil {
		return fmt.Errorf("while loading medications of user %s: %w", medication.UserID, err)
	}

	for _, other := range others {
		if err := d.checkPair(ctx, medication, &other); err != nil {
			slog.ErrorContext(ctx, "Error checking interaction",
				slog.String("medication", medication.ID),
				slog.String("other", other.ID),
				slog.Any("err", err))
		}
	}
	return nil
}

func (d *Dispatcher) checkPair(ctx context.Context, medication, other *models.Medication) error {
	result, err := d.checker.Check(ctx, medication.Name, other.Name)
	if err != nil {
		return fmt.Errorf("while checking %s against %s: %w", medication.Name, other.Name, err)
	}
	if !result.Found {
		return nil
	}

	interaction := &models.Interaction{
		UserID:        medication.UserID,
		Medication1ID: medication.ID,
		Medication2ID: other.ID,
		Severity:      result.Severity,
		Description:   result.Description,
		Source:        InteractionSource,
		DateChecked:   d.now(),
	}
	if err := d.db.WithContext(ctx).Create(interaction).Error; err != nil {
		return fmt.Errorf("while saving interaction: %w", err)
	}
	return nil
}

// FetchDrugData looks up the label of a medication, summarizes it and stores
// the result on the medication.
func (d *Dispatcher) FetchDrugData(ctx context.Context, medicationID string) error {
	medication, err := d.loadMedication(ctx, medicationID)
	if err != nil || medication == nil {
		return err
	}

	label, err := d.labels.Lookup(ctx, medication.Name)
	if err != nil {
		return fmt.Errorf("while looking up label for %s: %w", medication.Name, err)
	}

	summary, err := d.summarizer.Summarize(ctx, medication.Name, label)
	if err != nil {
		return fmt.Errorf("while summarizing %s: %w", medication.Name, err)
	}

	data := &models.FDAData{
		Indications: label.Indications,
		SideEffects: label.SideEffects,
		Summary:     summary,
	}
	err = d.db.WithContext(ctx).
		Model(&models.Medication{}).
		Where("id = ?", medication.ID).
		Select("FDAData").
		Updates(&models.Medication{FDAData: data}).Error
	if err != nil {
		return fmt.Errorf("while storing FDA data for %s: %w", medication.ID, err)
	}
	return nil
}
