package services

import (
	"context"
	"errors"
	"net/http"

	"jobboard_backend/internal/aggregator"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"
)

// AggregatorService proxies searches to the external job API.
type AggregatorService interface {
	Search(ctx context.Context, req *dto.ExternalSearchRequest) ([]dto.JobResponse, error)
}

type aggregatorService struct {
	searcher aggregator.Searcher
}

func NewAggregatorService(searcher aggregator.Searcher) AggregatorService {
	return &aggregatorService{searcher: searcher}
}

func (s *aggregatorService) Search(ctx context.Context, req *dto.ExternalSearchRequest) ([]dto.JobResponse, error) {
	if s.searcher == nil {
		return nil, apperrors.New(
			apperrors.CodeInvalidOperation,
			"aggregator",
			"External job search is not configured",
			http.StatusServiceUnavailable,
		)
	}

	listings, err := s.searcher.Search(ctx, aggregator.SearchParams{
		Query:        req.Query,
		Location:     req.Location,
		ContractType: req.ContractType,
		Page:         req.Page,
	})
	if err != nil {
		var upErr *aggregator.UpstreamError
		if errors.As(err, &upErr) && upErr.Status > 0 {
			// The handler relays the upstream status and body as-is.
			return nil, err
		}
		return nil, apperrors.ErrUpstream(err)
	}

	out := make([]dto.JobResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, dto.JobResponse{
			Title:        l.Title,
			Company:      l.Company,
			Description:  l.Description,
			Location:     l.Location,
			Salary:       l.Salary,
			ContractType: l.ContractType,
			Source:       "external",
			ExternalID:   l.ExternalID,
			ExternalURL:  l.URL,
		})
	}
	return out, nil
}
