package criteria

import (
	"context"
	"fmt"
	"strings"

	"acr/internal/platform/logger"
)

type Service struct {
	store StoreAPI
	log   *logger.Logger
}

func NewService(store StoreAPI, log *logger.Logger) *Service {
	return &Service{store: store, log: logger.OrNop(log)}
}

// Settings resolves every registered criterion for the type: override first,
// then the global default. Names never registered fall back in Settings.Enabled.
func (s *Service) Settings(ctx context.Context, appraisalTypeID int64) (Settings, error) {
	effective, err := s.List(ctx, appraisalTypeID)
	if err != nil {
		return Settings{}, err
	}
	values := make(map[string]bool, len(effective))
	for _, e := range effective {
		values[e.Name] = e.Value
	}
	return NewSettings(appraisalTypeID, values), nil
}

func (s *Service) List(ctx context.Context, appraisalTypeID int64) ([]Effective, error) {
	registered, err := s.store.Criteria(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	overrides, err := s.store.Overrides(ctx, appraisalTypeID)
	if err != nil {
		return nil, fmt.Errorf("load criteria overrides: %w", err)
	}

	out := make([]Effective, 0, len(registered))
	for _, c := range registered {
		e := Effective{Criterion: c, Value: c.Default}
		if v, ok := overrides[c.Name]; ok {
			e.Value = v
			e.Overridden = true
		}
		out = append(out, e)
	}
	for name := range overrides {
		if !containsName(registered, name) {
			s.log.Warn("override for unregistered criterion ignored", "appraisalTypeId", appraisalTypeID, "name", name)
		}
	}
	return out, nil
}

func (s *Service) SetOverride(ctx context.Context, appraisalTypeID int64, name string, value bool) error {
	name = strings.ToUpper(strings.TrimSpace(name))
	registered, err := s.store.Criteria(ctx)
	if err != nil {
		return fmt.Errorf("load criteria: %w", err)
	}
	if !containsName(registered, name) {
		return fmt.Errorf("%s: %w", name, ErrUnknownCriterion)
	}
	if err := s.store.UpsertOverride(ctx, appraisalTypeID, name, value); err != nil {
		return err
	}
	s.log.Info("criterion override set", "appraisalTypeId", appraisalTypeID, "name", name, "value", value)
	return nil
}

func containsName(list []Criterion, name string) bool {
	for _, c := range list {
		if c.Name == name {
			return true
		}
	}
	return false
}
