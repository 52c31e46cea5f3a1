package service

import (
	"context"
	"math"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
)

// StatsService считает статистику исходов откликов по версиям документов
type StatsService struct {
	applications *repository.ApplicationRepository
}

func NewStatsService(applications *repository.ApplicationRepository) *StatsService {
	return &StatsService{applications: applications}
}

// ForVersion возвращает статистику одной версии
func (s *StatsService) ForVersion(ctx context.Context, userID int64, docType domain.DocumentType, versionID int64) (*domain.VersionStats, error) {
	counts, err := s.applications.CountByStatusForVersion(ctx, userID, docType, versionID)
	if err != nil {
		return nil, err
	}

	return computeStats(counts), nil
}

// ForForest собирает статистику всех версий пользователя одним запросом —
// построитель дерева не должен ходить в базу на каждый узел
func (s *StatsService) ForForest(ctx context.Context, userID int64, docType domain.DocumentType) (map[int64]*domain.VersionStats, error) {
	grouped, err := s.applications.CountByStatusGrouped(ctx, userID, docType)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]*domain.VersionStats, len(grouped))
	for versionID, counts := range grouped {
		result[versionID] = computeStats(counts)
	}

	return result, nil
}

// computeStats превращает сырые количества в проценты. Каждый процент — доля
// от общего числа откликов; при нуле откликов всё остаётся нулевым.
func computeStats(counts domain.StatusCounts) *domain.VersionStats {
	total := counts.Total()

	percentage := func(n int) int {
		if total == 0 {
			return 0
		}
		return int(math.Round(float64(n) / float64(total) * 100))
	}

	return &domain.VersionStats{
		TotalApplications:   total,
		AppliedCount:        counts.Applied,
		InterviewCount:      counts.Interview,
		OfferCount:          counts.Offer,
		RejectedCount:       counts.Rejected,
		AppliedPercentage:   percentage(counts.Applied),
		InterviewPercentage: percentage(counts.Interview),
		OfferPercentage:     percentage(counts.Offer),
		RejectedPercentage:  percentage(counts.Rejected),
		SuccessRate:         percentage(counts.Offer),
	}
}
