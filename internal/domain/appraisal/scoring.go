package appraisal

import (
	"fmt"

	"acr/internal/domain/directory"
)

// ScoreAnswers turns chosen option values into item scores in scale order.
// An answer of 0 means "not applicable": it scores 0 and adds nothing to the maximum.
func ScoreAnswers(items []directory.ScaleItem, answers map[int64]int) ([]ItemScore, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	known := make(map[int64]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}
	for itemID := range answers {
		if !known[itemID] {
			return nil, fmt.Errorf("item %d: %w", itemID, ErrUnknownItem)
		}
	}

	scores := make([]ItemScore, 0, len(items))
	unanswered := 0
	for _, item := range items {
		value, ok := answers[item.ID]
		if !ok {
			unanswered++
			continue
		}
		if value < 0 {
			return nil, fmt.Errorf("item %d: %w", item.ID, ErrInvalidScore)
		}
		if value > item.MaxOptionValue {
			return nil, fmt.Errorf("item %d: %d > %d: %w", item.ID, value, item.MaxOptionValue, ErrObtainedExceedsMax)
		}
		maxScore := item.MaxOptionValue
		if value == 0 {
			maxScore = 0
		}
		scores = append(scores, ItemScore{ItemID: item.ID, MaxScore: maxScore, ObtainedScore: value})
	}
	if unanswered > 0 {
		return nil, fmt.Errorf("%d of %d items unanswered: %w", unanswered, len(items), ErrUnansweredItems)
	}
	return scores, nil
}

// ValidateItems checks an attempt's item scores and returns the summed maximum and
// obtained figures that go into the total.
func ValidateItems(items []ItemScore) (maxSum, obtainedSum float64, err error) {
	if len(items) == 0 {
		return 0, 0, ErrNoItems
	}
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if seen[item.ItemID] {
			return 0, 0, fmt.Errorf("item %d: %w", item.ItemID, ErrDuplicateItem)
		}
		seen[item.ItemID] = true
		if item.MaxScore < 0 || item.ObtainedScore < 0 {
			return 0, 0, fmt.Errorf("item %d: %w", item.ItemID, ErrInvalidScore)
		}
		if item.ObtainedScore > item.MaxScore {
			return 0, 0, fmt.Errorf("item %d: %d > %d: %w", item.ItemID, item.ObtainedScore, item.MaxScore, ErrObtainedExceedsMax)
		}
		maxSum += float64(item.MaxScore)
		obtainedSum += float64(item.ObtainedScore)
	}
	return maxSum, obtainedSum, nil
}
