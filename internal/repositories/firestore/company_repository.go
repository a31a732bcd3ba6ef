package firestore

import (
	"context"
	"errors"
	"strings"

	"github.com/praticos/api/internal/domain"
	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

const companiesCollection = "companies"

// CompanyRepository implements repositories.CompanyRepository backed by Firestore.
type CompanyRepository struct {
	provider  *pfirestore.Provider
	companies *pfirestore.BaseRepository[domain.Company]
}

// NewCompanyRepository constructs a Firestore-backed company repository.
func NewCompanyRepository(provider *pfirestore.Provider) (*CompanyRepository, error) {
	if provider == nil {
		return nil, errors.New("company repository requires firestore provider")
	}
	return &CompanyRepository{
		provider:  provider,
		companies: pfirestore.NewBaseRepository[domain.Company](provider, companiesCollection, nil),
	}, nil
}

// Get fetches the company display document.
func (r *CompanyRepository) Get(ctx context.Context, companyID string) (domain.Company, error) {
	if r == nil || r.provider == nil {
		return domain.Company{}, errors.New("company repository not initialised")
	}

	doc, err := r.companies.Get(ctx, strings.TrimSpace(companyID))
	if err != nil {
		return domain.Company{}, err
	}
	company := doc.Data
	company.ID = doc.ID
	return company, nil
}

var _ repositories.CompanyRepository = (*CompanyRepository)(nil)
