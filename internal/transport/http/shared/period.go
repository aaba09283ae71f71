package shared

import (
	"context"
	"errors"
	"net/http"

	"acr/internal/domain/directory"
)

var ErrInvalidPeriodParam = errors.New("periodId must be a positive integer")

type ActivePeriodSource interface {
	ActivePeriod(ctx context.Context) (directory.Period, error)
}

// ResolvePeriodID returns ?periodId= when given, otherwise the active period's id.
// The period is resolved once here and passed down explicitly.
func ResolvePeriodID(r *http.Request, periods ActivePeriodSource) (int64, error) {
	id, ok := QueryID(r, "periodId")
	if !ok {
		return 0, ErrInvalidPeriodParam
	}
	if id > 0 {
		return id, nil
	}
	period, err := periods.ActivePeriod(r.Context())
	if err != nil {
		return 0, err
	}
	return period.ID, nil
}
