package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const searchLimit = 10

type Service struct {
	repo    Repository
	sources LeadSourceRepository
}

func NewService(repo Repository, sources LeadSourceRepository) *Service {
	return &Service{repo: repo, sources: sources}
}

var validDocumentTypes = map[string]bool{
	DocumentDNI: true, DocumentCE: true, DocumentPassport: true,
}

var validSexes = map[string]bool{SexMale: true, SexFemale: true}

func (s *Service) validate(p *Patient) error {
	if !validDocumentTypes[p.DocumentType] {
		return fmt.Errorf("invalid document type: %s", p.DocumentType)
	}
	if strings.TrimSpace(p.DocumentNumber) == "" {
		return fmt.Errorf("document number is required")
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if p.Birthdate.IsZero() {
		return fmt.Errorf("birthdate is required")
	}
	if !validSexes[p.Sex] {
		return fmt.Errorf("invalid sex: %s", p.Sex)
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByDocument(ctx context.Context, documentNumber string) (*Patient, error) {
	return s.repo.GetByDocument(ctx, documentNumber)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// SearchPatients matches the query against document number and names,
// capped at 10 rows for typeahead use.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]*Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, query, searchLimit)
}

func (s *Service) CreateLeadSource(ctx context.Context, ls *LeadSource) error {
	if strings.TrimSpace(ls.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.sources.Create(ctx, ls)
}

func (s *Service) ListLeadSources(ctx context.Context) ([]*LeadSource, error) {
	return s.sources.List(ctx)
}

func (s *Service) UpdateLeadSource(ctx context.Context, ls *LeadSource) error {
	if strings.TrimSpace(ls.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.sources.Update(ctx, ls)
}
