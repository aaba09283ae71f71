package appraisal

import (
	"acr/internal/platform/logger"
	"acr/internal/platform/querier"
)

type Store struct {
	DB  querier.Querier
	Log *logger.Logger
}

func NewStore(db querier.Querier, log *logger.Logger) *Store {
	return &Store{DB: db, Log: logger.OrNop(log)}
}
