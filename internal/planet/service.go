package planet

import (
	"context"
	"log/slog"
)

// Service sits between the handlers and the Repository. Handlers depend on
// it, never on a concrete store.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing planet service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListAll(ctx context.Context) ([]Planet, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (*Planet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, data Data, username string) (*Planet, error) {
	return s.repo.Create(ctx, data, username, username)
}

func (s *Service) UpdateByID(ctx context.Context, id int, data Data, username string) (*Planet, error) {
	return s.repo.UpdateByID(ctx, id, data, username)
}

func (s *Service) DeleteByID(ctx context.Context, id int) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *Service) AttachPhoto(ctx context.Context, id int, filename string) (*Planet, error) {
	return s.repo.SetPhotoFilename(ctx, id, filename)
}
