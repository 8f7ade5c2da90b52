package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/planning"
	"github.com/okian/taskmatch/internal/domain/types"
	"github.com/okian/taskmatch/pkg/logger"
	"github.com/okian/taskmatch/pkg/metrics"
)

// Employees returns the roster in roster order.
func (s *Service) Employees(ctx context.Context) ([]model.Employee, error) {
	return s.roster.List(ctx)
}

// Employee returns one roster entry.
func (s *Service) Employee(ctx context.Context, id string) (model.Employee, error) {
	return s.roster.Get(ctx, id)
}

// MaxRecommendations returns the configured cap on ranked candidates.
func (s *Service) MaxRecommendations() int { return s.maxRecommendations }

// Recommend ranks the roster for a task. An empty eligible roster is not an
// error here: it yields an empty list.
func (s *Service) Recommend(ctx context.Context, q types.RecommendQuery) ([]types.Recommendation, error) {
	const op = "service.recommend"
	start := time.Now()

	roster, err := s.roster.List(ctx)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	recs, err := s.ranker.Recommend(roster, q.Category, q.Priority, q.EstimatedHours)
	switch {
	case errors.Is(err, model.ErrEmptyRoster):
		s.logger.Debug(ctx, "no eligible employees", logger.String("category", q.Category))
		recs = []types.Recommendation{}
	case errors.Is(err, model.ErrInvalidTaskDescriptor):
		metrics.RecordInvalidTaskDescriptor()
		return nil, model.Wrap(op, err)
	case err != nil:
		return nil, model.Wrap(op, err)
	}

	limit := s.maxRecommendations
	if q.Limit > 0 && q.Limit < limit {
		limit = q.Limit
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	metrics.RecordRecommendation(len(recs), float64(time.Since(start).Microseconds())/1000)
	return recs, nil
}

// AssessRisk scores assigning a task of the given effort and due date to an employee.
func (s *Service) AssessRisk(ctx context.Context, employeeID string, estimatedHours float64, dueDate time.Time) (types.RiskAssessment, error) {
	const op = "service.assess_risk"
	emp, err := s.roster.Get(ctx, employeeID)
	if err != nil {
		return types.RiskAssessment{}, model.Wrap(op, err)
	}
	ra, err := s.assessor.Assess(emp, estimatedHours, dueDate)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTaskDescriptor) {
			metrics.RecordInvalidTaskDescriptor()
		}
		return types.RiskAssessment{}, model.Wrap(op, err)
	}
	metrics.RecordRiskAssessment(ra.Level.String(), ra.Score)
	return ra, nil
}

// Team summarises the roster.
func (s *Service) Team(ctx context.Context) (types.TeamStats, error) {
	roster, err := s.roster.List(ctx)
	if err != nil {
		return types.TeamStats{}, model.Wrap("service.team", err)
	}
	return planning.TeamStats(roster), nil
}

// SuggestDeadline proposes a due date for the given effort.
func (s *Service) SuggestDeadline(_ context.Context, estimatedHours float64, category string, complexity model.Complexity) (types.DeadlineSuggestion, error) {
	d, err := s.planner.SuggestDeadline(estimatedHours, category, complexity)
	if err != nil {
		metrics.RecordInvalidTaskDescriptor()
		return types.DeadlineSuggestion{}, err
	}
	return d, nil
}

// ComplexityFactors returns the per-category complexity table.
func (s *Service) ComplexityFactors(_ context.Context) []planning.ComplexityFactor {
	return planning.ComplexityFactors()
}
