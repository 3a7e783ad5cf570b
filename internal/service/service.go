package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"billing-service/internal/dto"
	"billing-service/internal/email"
	"billing-service/internal/model"
	"billing-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Interfaces que deben implementar los colaboradores del workflow
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByCode(ctx context.Context, code string) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, code, status string, record model.StatusRecord) error
	AttachReceipt(ctx context.Context, code, fileRef string, record model.StatusRecord) error
}

type CodeGenerator interface {
	Next(ctx context.Context) (string, error)
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrOrderNotFound     = errors.New("orden no encontrada")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrFinalState        = errors.New("no se puede cambiar el estado de una orden en estado final")
)

// InvalidInputError nombra los campos faltantes o inválidos de la solicitud.
type InvalidInputError struct {
	Fields []string
}

func (e *InvalidInputError) Error() string {
	return "datos inválidos: " + strings.Join(e.Fields, ", ")
}

// Settings son los valores de configuración que el workflow inyecta en
// las plantillas y en las URLs públicas.
type Settings struct {
	BaseURL     string
	AdminEmail  string
	Bank        email.BankDetails
	Currency    string
	DefaultLang string
	SendTimeout time.Duration
}

type OrderService struct {
	repo     OrderRepository
	codes    CodeGenerator
	sender   email.Sender
	settings Settings
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderService(repo OrderRepository, codes CodeGenerator, sender email.Sender, settings Settings, logger *zap.Logger) *OrderService {
	if settings.SendTimeout <= 0 {
		settings.SendTimeout = 15 * time.Second
	}
	return &OrderService{
		repo:     repo,
		codes:    codes,
		sender:   sender,
		settings: settings,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateOrder ejecuta el workflow completo de alta: valida, asigna código,
// persiste la orden pendiente y recién entonces despacha los correos.
// Un fallo de entrega nunca deshace la orden ya creada; solo se refleja
// en el flag emailSent. El fallo de la copia al admin solo se loguea.
func (s *OrderService) CreateOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if err := s.validateCreate(in); err != nil {
		return nil, err
	}

	lang := in.Lang
	if lang == "" {
		lang = s.settings.DefaultLang
	}
	lang = email.Normalize(lang)

	order, err := s.persistNewOrder(ctx, in, lang)
	if err != nil {
		return nil, err
	}

	uploadURL := fmt.Sprintf("%s/comprobante?code=%s", s.settings.BaseURL, url.QueryEscape(order.Code))

	clientMsg := email.RenderPaymentInstructions(lang, email.PaymentData{
		Name:      in.Name,
		OrderCode: order.Code,
		Amount:    in.Amount,
		Currency:  s.settings.Currency,
		Product:   in.Product,
		UploadURL: uploadURL,
		Bank:      s.settings.Bank,
	})

	emailSent := true
	if err := s.send(ctx, in.Email, clientMsg); err != nil {
		emailSent = false
		s.logger.Error("fallo el email de datos de pago al cliente",
			zap.String("order", order.Code),
			zap.String("recipient", in.Email),
			zap.Error(err))
	}

	s.notifyAdmin(ctx, email.RenderAdminNewOrder(email.AdminOrderData{
		OrderCode: order.Code,
		Name:      in.Name,
		Email:     in.Email,
		Amount:    in.Amount,
		Currency:  s.settings.Currency,
		Product:   in.Product,
		Lang:      lang,
	}))

	return &dto.CreateOrderResponse{Success: true, OrderCode: order.Code, EmailSent: emailSent}, nil
}

// persistNewOrder pide un código y crea la orden. Una colisión de código
// indica que el contador se pisó con datos viejos: se reintenta con un
// código nuevo un par de veces antes de rendirse.
func (s *OrderService) persistNewOrder(ctx context.Context, in dto.CreateOrderRequest, lang string) (*model.Order, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := s.codes.Next(ctx)
		if err != nil {
			return nil, err
		}

		order := &model.Order{
			Code:          code,
			CustomerName:  in.Name,
			CustomerEmail: in.Email,
			Amount:        in.Amount,
			Language:      lang,
			Product:       in.Product,
			Status:        model.StatusPending,
			CreatedAt:     time.Now().UTC(),
		}

		err = s.repo.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, err
		}
		s.logger.Warn("código de orden duplicado, reintentando", zap.String("code", code))
		lastErr = err
	}
	return nil, lastErr
}

// SubmitReceipt registra el comprobante subido y avisa al equipo. El
// comprobante queda registrado aunque el aviso interno falle.
func (s *OrderService) SubmitReceipt(ctx context.Context, code, fileRef, notes string) (*dto.ReceiptResponse, error) {
	order, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	record := model.StatusRecord{
		Status:    model.StatusReceiptReceived,
		Reason:    "Comprobante recibido",
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.AttachReceipt(ctx, code, fileRef, record); err != nil {
		return nil, err
	}

	status := order.Status
	if status == model.StatusPending {
		status = model.StatusReceiptReceived
	}

	s.notifyAdmin(ctx, email.RenderAdminReceipt(email.AdminReceiptData{
		OrderCode: code,
		Name:      order.CustomerName,
		Email:     order.CustomerEmail,
		FileName:  filepath.Base(fileRef),
		Notes:     notes,
	}), fileRef)

	return &dto.ReceiptResponse{Success: true, OrderCode: code, Status: status}, nil
}

// UpdateStatus aplica una transición explícita. Las transiciones solo
// avanzan; al confirmar el pago se le avisa al cliente en su idioma.
func (s *OrderService) UpdateStatus(ctx context.Context, code, newStatus string) (*model.Order, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, &InvalidInputError{Fields: []string{"status"}}
	}

	order, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}
	if model.IsFinalStatus(order.Status) {
		return nil, ErrFinalState
	}
	if !model.CanTransition(order.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	record := model.StatusRecord{
		Status:    newStatus,
		Reason:    "Actualización manual",
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.UpdateStatus(ctx, code, newStatus, record); err != nil {
		return nil, err
	}
	order.Status = newStatus
	order.History = append(order.History, record)

	if newStatus == model.StatusConfirmed {
		msg := email.RenderPaymentConfirmed(order.Language, email.PaymentData{
			Name:      order.CustomerName,
			OrderCode: order.Code,
		})
		if err := s.send(ctx, order.CustomerEmail, msg); err != nil {
			s.logger.Error("fallo el email de confirmación de pago",
				zap.String("order", order.Code),
				zap.String("recipient", order.CustomerEmail),
				zap.Error(err))
		}
	}

	return order, nil
}

func (s *OrderService) GetByCode(ctx context.Context, code string) (*model.Order, error) {
	order, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *OrderService) GetAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *OrderService) validateCreate(in dto.CreateOrderRequest) error {
	var fields []string
	if s.validate.Var(in.Name, "required") != nil {
		fields = append(fields, "name")
	}
	if s.validate.Var(in.Email, "required,email") != nil {
		fields = append(fields, "email")
	}
	if s.validate.Var(in.Amount, "required,gt=0") != nil {
		fields = append(fields, "amount")
	}
	if len(fields) > 0 {
		return &InvalidInputError{Fields: fields}
	}
	return nil
}

func (s *OrderService) send(ctx context.Context, to string, msg email.Message, attachments ...string) error {
	ctx, cancel := context.WithTimeout(ctx, s.settings.SendTimeout)
	defer cancel()
	return s.sender.Send(ctx, to, msg, attachments...)
}

// notifyAdmin manda la copia interna. Nunca corta el flujo que la pidió.
func (s *OrderService) notifyAdmin(ctx context.Context, msg email.Message, attachments ...string) {
	if s.settings.AdminEmail == "" {
		return
	}
	if err := s.send(ctx, s.settings.AdminEmail, msg, attachments...); err != nil {
		s.logger.Error("fallo la notificación al admin",
			zap.String("recipient", s.settings.AdminEmail),
			zap.Error(err))
	}
}
