package service

import (
	"context"
	"strings"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
)

// LineageService восстанавливает лес версий из плоского списка строк.
// Дерево никогда не хранится в базе — только родительские указатели.
type LineageService struct {
	repo    *repository.VersionRepository
	stats   *StatsService
	docType domain.DocumentType
}

func NewLineageService(repo *repository.VersionRepository, stats *StatsService, docType domain.DocumentType) *LineageService {
	return &LineageService{
		repo:    repo,
		stats:   stats,
		docType: docType,
	}
}

// LineageFilter — активные фильтры отображения; нулевые значения выключены
type LineageFilter struct {
	Search          string
	Branch          string
	MinSuccessRate  *int
	HasApplications bool
	FavoritesOnly   bool
}

func (f LineageFilter) Active() bool {
	return f.Search != "" || f.Branch != "" || f.MinSuccessRate != nil ||
		f.HasApplications || f.FavoritesOnly
}

// BuildForest строит лес деревьев: версии в порядке создания, у каждого узла
// статистика исходов. Узел с несуществующим родителем поднимается в корни,
// а не теряется.
func (s *LineageService) BuildForest(ctx context.Context, userID int64) ([]*domain.LineageNode, error) {
	versions, err := s.repo.ListAsc(ctx, userID)
	if err != nil {
		return nil, err
	}

	statsByVersion, err := s.stats.ForForest(ctx, userID, s.docType)
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*domain.LineageNode, len(versions))
	for _, v := range versions {
		stats := statsByVersion[v.ID]
		if stats == nil {
			stats = computeStats(domain.StatusCounts{})
		}

		nodes[v.ID] = &domain.LineageNode{
			ID:              v.ID,
			VersionName:     v.VersionName,
			VersionNumber:   v.VersionNumber,
			BranchName:      v.BranchName,
			ParentVersionID: v.ParentVersionID,
			CreatedAt:       v.CreatedAt,
			IsActive:        v.IsActive,
			IsFavorite:      v.IsFavorite,
			Children:        []*domain.LineageNode{},
			Stats:           stats,
		}
	}

	// Второй проход в исходном порядке: порядок детей — порядок создания
	roots := make([]*domain.LineageNode, 0)
	for _, v := range versions {
		node := nodes[v.ID]
		if v.ParentVersionID != nil {
			if parent, ok := nodes[*v.ParentVersionID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// Filter рекурсивно отбирает узлы: узел выживает, если подходит сам или
// подходит любой его потомок — цепочка предков до совпадения сохраняется
func (s *LineageService) Filter(roots []*domain.LineageNode, f LineageFilter) []*domain.LineageNode {
	filtered := make([]*domain.LineageNode, 0, len(roots))
	for _, node := range roots {
		if kept := filterNode(node, f); kept != nil {
			filtered = append(filtered, kept)
		}
	}
	return filtered
}

func filterNode(node *domain.LineageNode, f LineageFilter) *domain.LineageNode {
	children := make([]*domain.LineageNode, 0, len(node.Children))
	for _, child := range node.Children {
		if kept := filterNode(child, f); kept != nil {
			children = append(children, kept)
		}
	}

	if !nodeMatches(node, f) && len(children) == 0 {
		return nil
	}

	copied := *node
	copied.Children = children
	return &copied
}

func nodeMatches(node *domain.LineageNode, f LineageFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(node.VersionName), needle) &&
			!strings.Contains(strings.ToLower(node.BranchName), needle) {
			return false
		}
	}
	if f.Branch != "" && node.BranchName != f.Branch {
		return false
	}
	if f.MinSuccessRate != nil && node.Stats.SuccessRate < *f.MinSuccessRate {
		return false
	}
	if f.HasApplications && node.Stats.TotalApplications == 0 {
		return false
	}
	if f.FavoritesOnly && !node.IsFavorite {
		return false
	}
	return true
}

// MainRoots — отображение по умолчанию: только корни ветки main.
// Это правило показа, а не модели данных.
func (s *LineageService) MainRoots(roots []*domain.LineageNode) []*domain.LineageNode {
	main := make([]*domain.LineageNode, 0, len(roots))
	for _, node := range roots {
		if node.BranchName == "main" {
			main = append(main, node)
		}
	}
	return main
}

// Branches возвращает сводку по каждой ветке: последняя версия, число
// версий и статистика последней версии
func (s *LineageService) Branches(ctx context.Context, userID int64) ([]domain.BranchSummary, error) {
	versions, err := s.repo.ListAsc(ctx, userID)
	if err != nil {
		return nil, err
	}

	statsByVersion, err := s.stats.ForForest(ctx, userID, s.docType)
	if err != nil {
		return nil, err
	}

	type branchInfo struct {
		latestID int64
		count    int
	}

	order := make([]string, 0)
	byBranch := make(map[string]*branchInfo)
	for _, v := range versions {
		info, ok := byBranch[v.BranchName]
		if !ok {
			info = &branchInfo{}
			byBranch[v.BranchName] = info
			order = append(order, v.BranchName)
		}
		// Список отсортирован по created_at, последняя запись и есть свежая
		info.latestID = v.ID
		info.count++
	}

	summaries := make([]domain.BranchSummary, 0, len(order))
	for _, name := range order {
		info := byBranch[name]

		stats := statsByVersion[info.latestID]
		if stats == nil {
			stats = computeStats(domain.StatusCounts{})
		}

		summaries = append(summaries, domain.BranchSummary{
			BranchName:      name,
			LatestVersionID: info.latestID,
			VersionCount:    info.count,
			Stats:           stats,
		})
	}

	return summaries, nil
}
