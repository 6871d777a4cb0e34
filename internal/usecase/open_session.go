package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"go.uber.org/zap"
)

// OpenSessionUseCase performs the authentication handshake against the API.
type OpenSessionUseCase struct {
	GithubRepo repository.GithubRepository
	Log        *zap.Logger
}

// Execute runs the use case.
func (uc *OpenSessionUseCase) Execute(ctx context.Context) (*domain.Session, error) {
	login, err := uc.GithubRepo.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open API session: %w", err)
	}
	if uc.Log != nil {
		uc.Log.Debug("authenticated", zap.String("login", login))
	}
	return &domain.Session{Login: login}, nil
}
