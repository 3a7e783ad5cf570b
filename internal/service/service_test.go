package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"billing-service/internal/dto"
	"billing-service/internal/email"
	"billing-service/internal/model"
	"billing-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ─── fakes ───────────────────────────────────────────

type memRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func newMemRepo() *memRepo {
	return &memRepo{orders: make(map[string]*model.Order)}
}

func (r *memRepo) Create(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.Code]; ok {
		return repository.ErrDuplicateCode
	}
	cp := *o
	r.orders[o.Code] = &cp
	return nil
}

func (r *memRepo) FindByCode(ctx context.Context, code string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memRepo) FindAll(ctx context.Context) ([]*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, code, status string, record model.StatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.History = append(o.History, record)
	return nil
}

func (r *memRepo) AttachReceipt(ctx context.Context, code, fileRef string, record model.StatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok {
		return repository.ErrNotFound
	}
	o.ReceiptFile = fileRef
	if o.Status == model.StatusPending {
		o.Status = model.StatusReceiptReceived
		o.History = append(o.History, record)
	}
	return nil
}

type fakeCodes struct {
	seq  int
	fail error
}

func (f *fakeCodes) Next(ctx context.Context) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.seq++
	return fmt.Sprintf("VNY-2026-%04d", f.seq), nil
}

type sentMail struct {
	To          string
	Subject     string
	Attachments []string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool
	onSend  func(to string)
}

func (f *fakeSender) Send(ctx context.Context, to string, msg email.Message, attachments ...string) error {
	if f.onSend != nil {
		f.onSend(to)
	}
	if f.failFor[to] {
		return fmt.Errorf("%w: destinatario %s: smtp caído", email.ErrDeliveryFailed, to)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, Subject: msg.Subject, Attachments: attachments})
	return nil
}

func (f *fakeSender) sentTo(to string) []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMail
	for _, m := range f.sent {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

const adminAddr = "admin@viny2030.com.ar"

func newTestService(t *testing.T, repo OrderRepository, codes CodeGenerator, sender email.Sender) *OrderService {
	settings := Settings{
		BaseURL:    "https://viny2030.com.ar",
		AdminEmail: adminAddr,
		Bank: email.BankDetails{
			Name:   "Banco Galicia",
			Holder: "Viny 2030 S.A.",
			CBU:    "0000000000000000000000",
			Alias:  "VINY.2030.PAGOS",
		},
		Currency:    "$",
		DefaultLang: "es",
		SendTimeout: time.Second,
	}
	return NewOrderService(repo, codes, sender, settings, zaptest.NewLogger(t))
}

func validRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{Name: "Ana", Email: "ana@x.com", Amount: 100, Lang: "en"}
}

// ─── CreateOrder ─────────────────────────────────────

func TestCreateOrderSuccess(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)

	res, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "VNY-2026-0001", res.OrderCode)
	assert.True(t, res.EmailSent)

	order, err := repo.FindByCode(context.Background(), "VNY-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "en", order.Language)
	assert.False(t, order.CreatedAt.IsZero())

	require.Len(t, sender.sentTo("ana@x.com"), 1)
	require.Len(t, sender.sentTo(adminAddr), 1)
}

func TestCreateOrderValidationNamesFields(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{})

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.ElementsMatch(t, []string{"name", "email", "amount"}, invalid.Fields)

	// fail fast: nada persistido, nada enviado
	all, _ := repo.FindAll(context.Background())
	assert.Empty(t, all)
	assert.Empty(t, sender.sent)
}

func TestCreateOrderRejectsBadEmailAndAmount(t *testing.T) {
	svc := newTestService(t, newMemRepo(), &fakeCodes{}, &fakeSender{})

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		Name: "Ana", Email: "no-es-un-email", Amount: -5,
	})

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.ElementsMatch(t, []string{"email", "amount"}, invalid.Fields)
}

func TestCreateOrderCodeGeneratorFailure(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	codes := &fakeCodes{fail: fmt.Errorf("contador caído")}
	svc := newTestService(t, repo, codes, sender)

	_, err := svc.CreateOrder(context.Background(), validRequest())
	require.Error(t, err)

	// sin código no hay orden parcial ni emails
	all, _ := repo.FindAll(context.Background())
	assert.Empty(t, all)
	assert.Empty(t, sender.sent)
}

func TestCreateOrderPersistsBeforeDispatch(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	sender.onSend = func(to string) {
		// al momento de despachar, la orden ya tiene que estar commiteada
		if _, err := repo.FindByCode(context.Background(), "VNY-2026-0001"); err != nil {
			t.Errorf("se despachó email antes de persistir la orden: %v", err)
		}
	}
	svc := newTestService(t, repo, &fakeCodes{}, sender)

	_, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, sender.sent)
}

func TestCreateOrderCustomerDeliveryFailure(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{failFor: map[string]bool{"ana@x.com": true}}
	svc := newTestService(t, repo, &fakeCodes{}, sender)

	res, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.EmailSent)

	// la orden queda creada igual y el admin recibe su copia
	order, err := repo.FindByCode(context.Background(), res.OrderCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Len(t, sender.sentTo(adminAddr), 1)
}

func TestCreateOrderAdminDeliveryFailureIgnored(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{failFor: map[string]bool{adminAddr: true}}
	svc := newTestService(t, repo, &fakeCodes{}, sender)

	res, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, res.EmailSent)
}

func TestCreateOrderRetriesOnDuplicateCode(t *testing.T) {
	repo := newMemRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Order{
		Code: "VNY-2026-0001", Status: model.StatusPending,
	}))
	svc := newTestService(t, repo, &fakeCodes{}, &fakeSender{})

	res, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "VNY-2026-0002", res.OrderCode)
}

func TestCreateOrderDefaultsLanguage(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(t, repo, &fakeCodes{}, &fakeSender{})

	req := validRequest()
	req.Lang = "klingon"
	res, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	order, _ := repo.FindByCode(context.Background(), res.OrderCode)
	assert.Equal(t, "es", order.Language)
}

// ─── SubmitReceipt ───────────────────────────────────

func createPending(t *testing.T, svc *OrderService) string {
	res, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)
	return res.OrderCode
}

func TestSubmitReceiptUnknownOrder(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)

	_, err := svc.SubmitReceipt(context.Background(), "VNY-2026-9999", "/tmp/x.pdf", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	all, _ := repo.FindAll(context.Background())
	assert.Empty(t, all)
	assert.Empty(t, sender.sent)
}

func TestSubmitReceiptAdvancesStatusOnce(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)
	code := createPending(t, svc)

	res, err := svc.SubmitReceipt(context.Background(), code, "/uploads/a.pdf", "primer intento")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceiptReceived, res.Status)

	// segunda subida: idempotente respecto del estado
	res, err = svc.SubmitReceipt(context.Background(), code, "/uploads/b.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceiptReceived, res.Status)

	order, _ := repo.FindByCode(context.Background(), code)
	assert.Equal(t, model.StatusReceiptReceived, order.Status)
	assert.Equal(t, "/uploads/b.pdf", order.ReceiptFile)
}

func TestSubmitReceiptNotifiesAdminWithAttachment(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)
	code := createPending(t, svc)

	_, err := svc.SubmitReceipt(context.Background(), code, "/uploads/recibo.pdf", "")
	require.NoError(t, err)

	mails := sender.sentTo(adminAddr)
	require.Len(t, mails, 2) // alta + comprobante
	assert.Equal(t, []string{"/uploads/recibo.pdf"}, mails[1].Attachments)
}

func TestSubmitReceiptAdminFailureNotSurfaced(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)
	code := createPending(t, svc)

	sender.failFor = map[string]bool{adminAddr: true}
	res, err := svc.SubmitReceipt(context.Background(), code, "/uploads/a.pdf", "")
	require.NoError(t, err)
	assert.True(t, res.Success)

	order, _ := repo.FindByCode(context.Background(), code)
	assert.Equal(t, model.StatusReceiptReceived, order.Status)
}

// ─── UpdateStatus ────────────────────────────────────

func TestUpdateStatusValidTransition(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	svc := newTestService(t, repo, &fakeCodes{}, sender)
	code := createPending(t, svc)

	_, err := svc.SubmitReceipt(context.Background(), code, "/uploads/a.pdf", "")
	require.NoError(t, err)

	order, err := svc.UpdateStatus(context.Background(), code, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, order.Status)

	// confirmación al cliente: alta + confirmación
	assert.Len(t, sender.sentTo("ana@x.com"), 2)
}

func TestUpdateStatusRejectsSkippedTransition(t *testing.T) {
	svc := newTestService(t, newMemRepo(), &fakeCodes{}, &fakeSender{})
	code := createPending(t, svc)

	_, err := svc.UpdateStatus(context.Background(), code, model.StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusFinalStateLocked(t *testing.T) {
	svc := newTestService(t, newMemRepo(), &fakeCodes{}, &fakeSender{})
	code := createPending(t, svc)

	_, err := svc.UpdateStatus(context.Background(), code, model.StatusCancelled)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), code, model.StatusPending)
	assert.ErrorIs(t, err, ErrFinalState)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	svc := newTestService(t, newMemRepo(), &fakeCodes{}, &fakeSender{})
	code := createPending(t, svc)

	order, err := svc.UpdateStatus(context.Background(), code, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc := newTestService(t, newMemRepo(), &fakeCodes{}, &fakeSender{})
	code := createPending(t, svc)

	_, err := svc.UpdateStatus(context.Background(), code, "enviado")
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := newTestService(t, newMemRepo(), &fakeCodes{}, &fakeSender{})

	_, err := svc.UpdateStatus(context.Background(), "VNY-2026-9999", model.StatusCancelled)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
