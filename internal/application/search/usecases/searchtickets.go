package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type SearchTicketsQuery struct {
	Query string
	Limit int
}

type SearchTicketsResult struct {
	Candidates []search.Candidate
	// Source is empty when nothing matched.
	Source search.Source
}

// SearchTicketsUseCase ranks archived tickets for a free-text query: semantic
// index first, keyword search when that yields nothing or fails.
type SearchTicketsUseCase struct {
	index        search.Index
	metadataRepo archive.TicketMetadataRepository
	metrics      SearchMetrics
	logger       logger.Interface
}

func NewSearchTicketsUseCase(
	index search.Index,
	metadataRepo archive.TicketMetadataRepository,
	metrics SearchMetrics,
	logger logger.Interface,
) *SearchTicketsUseCase {
	return &SearchTicketsUseCase{
		index:        index,
		metadataRepo: metadataRepo,
		metrics:      metrics,
		logger:       logger,
	}
}

func (uc *SearchTicketsUseCase) Execute(ctx context.Context, query SearchTicketsQuery) (*SearchTicketsResult, error) {
	text := strings.TrimSpace(query.Query)
	if text == "" {
		return nil, errors.NewValidationError("search query is required")
	}
	limit := query.Limit
	if limit <= 0 || limit > search.MaxCandidates {
		limit = search.MaxCandidates
	}

	result := &SearchTicketsResult{Candidates: []search.Candidate{}}

	semantic, err := uc.semantic(ctx, text, limit)
	if err != nil {
		uc.logger.Warnw("semantic search failed, falling back to keyword search", "error", err)
	}
	if len(semantic) > 0 {
		result.Candidates = semantic
		result.Source = search.SourceSemantic
	} else {
		metas, err := uc.metadataRepo.SearchByKeywords(ctx, strings.Fields(text), limit)
		if err != nil {
			uc.logger.Errorw("keyword search failed", "query", text, "error", err)
			return nil, fmt.Errorf("failed to search tickets: %w", err)
		}
		for _, m := range metas {
			result.Candidates = append(result.Candidates, toCandidate(m, 0, search.SourceKeyword))
		}
		if len(result.Candidates) > 0 {
			result.Source = search.SourceKeyword
		}
	}

	if uc.metrics != nil {
		source := string(result.Source)
		if source == "" {
			source = "none"
		}
		uc.metrics.IncSearch(source)
	}

	uc.logger.Infow("ticket search finished", "query", text, "source", result.Source, "results", len(result.Candidates))
	return result, nil
}

// semantic keeps the index order and drops matches whose metadata row is gone.
func (uc *SearchTicketsUseCase) semantic(ctx context.Context, text string, limit int) ([]search.Candidate, error) {
	if uc.index == nil {
		return nil, nil
	}
	matches, err := uc.index.Query(ctx, text, limit)
	if err != nil || len(matches) == 0 {
		return nil, err
	}

	ids := make([]uint, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.MetadataID)
	}
	metas, err := uc.metadataRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*archive.TicketMetadata, len(metas))
	for _, m := range metas {
		byID[m.ID()] = m
	}

	out := make([]search.Candidate, 0, len(matches))
	for _, match := range matches {
		if m, ok := byID[match.MetadataID]; ok {
			out = append(out, toCandidate(m, match.Score, search.SourceSemantic))
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func toCandidate(m *archive.TicketMetadata, score float64, source search.Source) search.Candidate {
	return search.Candidate{
		MetadataID:   m.ID(),
		ChannelID:    m.ChannelID(),
		Title:        m.Title(),
		PropertyName: m.PropertyName(),
		Summary:      m.Summary(),
		CreatedAt:    m.CreatedAt(),
		Score:        score,
		Source:       source,
	}
}
