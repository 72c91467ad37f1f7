package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/domain"
)

type CatalogService struct{ repo domain.CatalogRepository }

func NewCatalogService(r domain.CatalogRepository) *CatalogService {
	return &CatalogService{repo: r}
}

// EnsureSeeded loads DefaultCatalog when no make exists yet. It reports
// whether it wrote anything.
func (s *CatalogService) EnsureSeeded(ctx context.Context) (bool, error) {
	n, err := s.repo.CountMakes(ctx)
	if err != nil {
		return false, fmt.Errorf("count car makes: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.repo.InsertCatalog(ctx, DefaultCatalog); err != nil {
		return false, fmt.Errorf("seed car catalog: %w", err)
	}
	log.Info().Int("makes", len(DefaultCatalog)).Msg("car catalog seeded")
	return true, nil
}

// ListCarModels seeds an empty catalog first.
func (s *CatalogService) ListCarModels(ctx context.Context) ([]domain.CarModelView, error) {
	if _, err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	models, err := s.repo.ListCarModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list car models: %w", err)
	}
	return models, nil
}

var DefaultCatalog = []domain.CarMake{
	{Name: "NISSAN", Description: "Great cars. Japanese technology", Models: []domain.CarModel{
		{Name: "Pathfinder", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "Qashqai", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "XTRAIL", Type: "SUV", Year: 2023, DealerID: 1},
	}},
	{Name: "Mercedes", Description: "Great cars. German technology", Models: []domain.CarModel{
		{Name: "A-Class", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "C-Class", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "E-Class", Type: "SUV", Year: 2023, DealerID: 1},
	}},
	{Name: "Audi", Description: "Great cars. German technology", Models: []domain.CarModel{
		{Name: "A4", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "A5", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "A6", Type: "SUV", Year: 2023, DealerID: 1},
	}},
	{Name: "Kia", Description: "Great cars. Korean technology", Models: []domain.CarModel{
		{Name: "Sorrento", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "Carnival", Type: "SUV", Year: 2023, DealerID: 1},
		{Name: "Cerato", Type: "Sedan", Year: 2023, DealerID: 1},
	}},
	{Name: "Toyota", Description: "Great cars. Japanese technology", Models: []domain.CarModel{
		{Name: "Corolla", Type: "Sedan", Year: 2023, DealerID: 1},
		{Name: "Camry", Type: "Sedan", Year: 2023, DealerID: 1},
		{Name: "Kluger", Type: "SUV", Year: 2023, DealerID: 1},
	}},
}
