package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"billing-service/internal/dto"
	"billing-service/internal/email"
	"billing-service/internal/model"
	"billing-service/internal/repository"

	"go.uber.org/zap"
)

var ErrCompanyExists = errors.New("el email ya está registrado")

const trialDays = 7

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByAPIKey(ctx context.Context, key string) (*model.Company, error)
}

// CompanyService registra empresas y emite sus API keys. Las keys son
// opacas: 32 bytes aleatorios en hex, solo sirven para buscar la empresa.
type CompanyService struct {
	repo     CompanyRepository
	sender   email.Sender
	settings Settings
	logger   *zap.Logger
}

func NewCompanyService(repo CompanyRepository, sender email.Sender, settings Settings, logger *zap.Logger) *CompanyService {
	if settings.SendTimeout <= 0 {
		settings.SendTimeout = 15 * time.Second
	}
	return &CompanyService{repo: repo, sender: sender, settings: settings, logger: logger}
}

func (s *CompanyService) Register(ctx context.Context, in dto.RegisterCompanyRequest) (*model.Company, error) {
	key, err := newAPIKey()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company := &model.Company{
		Name:               in.Name,
		Email:              in.Email,
		Phone:              in.Phone,
		APIKey:             key,
		SubscriptionStatus: "pendiente",
		TrialExpiresAt:     now.AddDate(0, 0, trialDays),
		CreatedAt:          now,
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrCompanyExists
		}
		return nil, err
	}

	// Email de bienvenida con la key; si falla, la empresa ya quedó creada.
	msg := email.RenderCompanyWelcome(email.WelcomeData{
		Name:         in.Name,
		APIKey:       key,
		DashboardURL: s.settings.BaseURL + "/admin",
		TrialDays:    trialDays,
	})
	sendCtx, cancel := context.WithTimeout(ctx, s.settings.SendTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, in.Email, msg); err != nil {
		s.logger.Error("fallo el email de bienvenida",
			zap.String("recipient", in.Email),
			zap.Error(err))
	}

	return company, nil
}

// Authenticate resuelve una API key a su empresa. Key desconocida es el
// único modo de fallo que ve el caller.
func (s *CompanyService) Authenticate(ctx context.Context, key string) (*model.Company, error) {
	if key == "" {
		return nil, repository.ErrNotFound
	}
	return s.repo.FindByAPIKey(ctx, key)
}

func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generando api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
