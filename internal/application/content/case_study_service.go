package content

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalshop/backend/internal/domain/content"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCaseStudyNotFound is returned when a case study does not exist
var ErrCaseStudyNotFound = shared.NotFound("Case study not found")

var errCaseStudySlugTaken = shared.NewDomainError(shared.ErrAlreadyExists.Code, "A case study with this slug already exists")

// CaseStudyService manages case studies
type CaseStudyService struct {
	repo   content.CaseStudyRepository
	logger *zap.Logger
}

// NewCaseStudyService creates a new CaseStudyService
func NewCaseStudyService(repo content.CaseStudyRepository, logger *zap.Logger) *CaseStudyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseStudyService{repo: repo, logger: logger}
}

// List returns one page of case studies, newest first
func (s *CaseStudyService) List(ctx context.Context, req ListFilter) (*CaseStudyPage, error) {
	filter := pageFilter(req)
	studies, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]CaseStudyResponse, len(studies))
	for i := range studies {
		items[i] = ToCaseStudyResponse(&studies[i])
	}
	paged := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &CaseStudyPage{
		CaseStudies: paged.Items,
		Total:       paged.Total,
		Page:        paged.Page,
		PerPage:     paged.PageSize,
		TotalPages:  paged.TotalPages,
	}, nil
}

// Get returns a case study by id
func (s *CaseStudyService) Get(ctx context.Context, id uuid.UUID) (*CaseStudyResponse, error) {
	cs, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCaseStudyResponse(cs)
	return &resp, nil
}

// GetBySlug returns a case study by slug
func (s *CaseStudyService) GetBySlug(ctx context.Context, slug string) (*CaseStudyResponse, error) {
	cs, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCaseStudyNotFound
		}
		return nil, err
	}
	resp := ToCaseStudyResponse(cs)
	return &resp, nil
}

// Create stores a new case study
func (s *CaseStudyService) Create(ctx context.Context, req CaseStudyRequest) (*CaseStudyResponse, error) {
	cs, err := content.NewCaseStudy(req.Title, req.Slug, sections(req))
	if err != nil {
		return nil, err
	}
	cs.SetImage(strings.TrimSpace(req.ImageURL))
	if err := s.ensureSlugFree(ctx, cs.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cs); err != nil {
		return nil, err
	}

	s.logger.Info("Case study created", zap.String("case_study_id", cs.ID.String()), zap.String("slug", cs.Slug))
	resp := ToCaseStudyResponse(cs)
	return &resp, nil
}

// Update replaces a case study's content
func (s *CaseStudyService) Update(ctx context.Context, id uuid.UUID, req CaseStudyRequest) (*CaseStudyResponse, error) {
	cs, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cs.Edit(req.Title, req.Slug, sections(req)); err != nil {
		return nil, err
	}
	cs.SetImage(strings.TrimSpace(req.ImageURL))
	if err := s.ensureSlugFree(ctx, cs.Slug, &cs.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cs); err != nil {
		return nil, err
	}

	resp := ToCaseStudyResponse(cs)
	return &resp, nil
}

// Delete removes a case study
func (s *CaseStudyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrCaseStudyNotFound
		}
		return err
	}
	s.logger.Info("Case study deleted", zap.String("case_study_id", id.String()))
	return nil
}

func (s *CaseStudyService) find(ctx context.Context, id uuid.UUID) (*content.CaseStudy, error) {
	cs, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCaseStudyNotFound
		}
		return nil, err
	}
	return cs, nil
}

func (s *CaseStudyService) ensureSlugFree(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	taken, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errCaseStudySlugTaken
	}
	return nil
}

func sections(req CaseStudyRequest) content.CaseStudySections {
	return content.CaseStudySections{
		Summary:   req.Summary,
		Challenge: req.Challenge,
		Solution:  req.Solution,
		Results:   req.Results,
	}
}
