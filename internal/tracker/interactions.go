package tracker

import (
	"context"
	"fmt"
	"sort"

	"medication-tracker-server/internal/models"
)

// CriticalAlertTitle heads every critical interaction alert.
const CriticalAlertTitle = "Critical Interaction Alert"

// EnrichedInteraction is an interaction with both medication names resolved.
type EnrichedInteraction struct {
	models.Interaction
	Medication1Name string `json:"medication1Name"`
	Medication2Name string `json:"medication2Name"`
}

// Alert is a critical interaction shaped for banner display. Timestamp is the
// check time in Unix milliseconds.
type Alert struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Severity  models.Severity `json:"severity"`
	Timestamp int64           `json:"timestamp"`
}

// EnrichInteractions joins interactions with medication names and sorts them
// most severe first, keeping the input order within a severity. Interactions
// with either medication missing from names are dropped.
func EnrichInteractions(interactions []models.Interaction, names map[string]string) []EnrichedInteraction {
	enriched := []EnrichedInteraction{}
	for _, interaction := range interactions {
		name1, ok1 := names[interaction.Medication1ID]
		name2, ok2 := names[interaction.Medication2ID]
		if !ok1 || !ok2 {
			continue
		}
		enriched = append(enriched, EnrichedInteraction{
			Interaction:     interaction,
			Medication1Name: name1,
			Medication2Name: name2,
		})
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].Severity.Rank() < enriched[j].Severity.Rank()
	})
	return enriched
}

// CriticalAlerts turns the critical interactions whose medications both
// resolve into alerts, in input order.
func CriticalAlerts(interactions []models.Interaction, names map[string]string) []Alert {
	alerts := []Alert{}
	for _, interaction := range interactions {
		if interaction.Severity != models.SeverityCritical {
			continue
		}
		name1, ok1 := names[interaction.Medication1ID]
		name2, ok2 := names[interaction.Medication2ID]
		if !ok1 || !ok2 {
			continue
		}
		alerts = append(alerts, Alert{
			ID:        interaction.ID,
			Title:     CriticalAlertTitle,
			Message:   fmt.Sprintf("%s and %s: %s", name1, name2, interaction.Description),
			Severity:  interaction.Severity,
			Timestamp: interaction.DateChecked.UnixMilli(),
		})
	}
	return alerts
}

// Interactions lists the user's interactions, enriched and severity sorted.
func (s *Service) Interactions(ctx context.Context, userID string) ([]EnrichedInteraction, error) {
	interactions, names, err := s.loadInteractions(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return EnrichInteractions(interactions, names), nil
}

// CriticalAlerts lists the user's critical interactions as alerts.
func (s *Service) CriticalAlerts(ctx context.Context, userID string) ([]Alert, error) {
	interactions, names, err := s.loadInteractions(ctx, userID, models.SeverityCritical)
	if err != nil {
		return nil, err
	}
	return CriticalAlerts(interactions, names), nil
}

// loadInteractions fetches the user's interactions, optionally of one
// severity, plus the names of every medication they reference.
func (s *Service) loadInteractions(ctx context.Context, userID string, severity models.Severity) ([]models.Interaction, map[string]string, error) {
	db := s.db.WithContext(ctx)

	query := db.Where("user_id = ?", userID)
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}

	var interactions []models.Interaction
	if err := query.Order("date_checked asc").Order("created_at asc").Find(&interactions).Error; err != nil {
		return nil, nil, fmt.Errorf("while loading interactions: %w", err)
	}

	names := map[string]string{}
	if len(interactions) == 0 {
		return interactions, names, nil
	}

	idSet := map[string]struct{}{}
	for _, interaction := range interactions {
		idSet[interaction.Medication1ID] = struct{}{}
		idSet[interaction.Medication2ID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var medications []models.Medication
	if err := db.Select("id", "name").Where("id IN ?", ids).Find(&medications).Error; err != nil {
		return nil, nil, fmt.Errorf("while resolving interaction medications: %w", err)
	}
	for _, medication := range medications {
		names[medication.ID] = medication.Name
	}

	return interactions, names, nil
}
