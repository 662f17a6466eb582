package service

import (
	"sort"

	"github.com/classtrack/approval-api/internal/models"
)

// Latest-wins resolution: grade records are append-only and corrections are
// new rows, so among all records sharing a composite key the one with the
// highest ID is authoritative. The helpers here never average or drop rows;
// any further reduction is the caller's explicit choice.

// ResolveLatest picks the authoritative record from candidates sharing one
// composite key. Returns false when candidates is empty.
func ResolveLatest(candidates []models.GradeRecord) (models.GradeRecord, bool) {
	if len(candidates) == 0 {
		return models.GradeRecord{}, false
	}
	latest := candidates[0]
	for _, record := range candidates[1:] {
		if record.ID > latest.ID {
			latest = record
		}
	}
	return latest, true
}

// ResolveLatestPerKey groups records by their full composite key (including
// grading period) and returns one authoritative record per key, ordered by
// ascending record ID for deterministic output.
func ResolveLatestPerKey(records []models.GradeRecord) []models.GradeRecord {
	byKey := make(map[models.GradeKey]models.GradeRecord, len(records))
	for _, record := range records {
		key := record.Key()
		if current, ok := byKey[key]; !ok || record.ID > current.ID {
			byKey[key] = record
		}
	}
	resolved := make([]models.GradeRecord, 0, len(byKey))
	for _, record := range byKey {
		resolved = append(resolved, record)
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	return resolved
}

// ResolveLatestPerPeriod groups records for a single (student, subject,
// level, year) by grading period and returns the authoritative record of
// each distinct period, keyed by period ID. Records without a period group
// under the empty key.
func ResolveLatestPerPeriod(records []models.GradeRecord) map[string]models.GradeRecord {
	byPeriod := make(map[string]models.GradeRecord)
	for _, record := range records {
		period := ""
		if record.GradingPeriodID != nil {
			period = *record.GradingPeriodID
		}
		if current, ok := byPeriod[period]; !ok || record.ID > current.ID {
			byPeriod[period] = record
		}
	}
	return byPeriod
}
