package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplePayment() PaymentData {
	return PaymentData{
		Name:      "Ana",
		OrderCode: "VNY-2026-0001",
		Amount:    100,
		Currency:  "$",
		Product:   "Suscripción anual",
		UploadURL: "https://viny2030.com.ar/comprobante?code=VNY-2026-0001",
		Bank: BankDetails{
			Name:   "Banco Galicia",
			Holder: "Viny 2030 S.A.",
			CBU:    "0000000000000000000000",
			Alias:  "VINY.2030.PAGOS",
		},
	}
}

func TestRenderPaymentInstructionsDeterministic(t *testing.T) {
	a := RenderPaymentInstructions("en", samplePayment())
	b := RenderPaymentInstructions("en", samplePayment())

	assert.Equal(t, a.Subject, b.Subject)
	assert.Equal(t, a.HTML, b.HTML)
}

func TestRenderPaymentInstructionsFallback(t *testing.T) {
	unknown := RenderPaymentInstructions("xx", samplePayment())
	spanish := RenderPaymentInstructions("es", samplePayment())

	assert.Equal(t, spanish.Subject, unknown.Subject)
	assert.Equal(t, spanish.HTML, unknown.HTML)
}

func TestRenderPaymentInstructionsInjectsBankData(t *testing.T) {
	msg := RenderPaymentInstructions("es", samplePayment())

	assert.Contains(t, msg.Subject, "VNY-2026-0001")
	assert.Contains(t, msg.HTML, "Banco Galicia")
	assert.Contains(t, msg.HTML, "VINY.2030.PAGOS")
	assert.Contains(t, msg.HTML, "0000000000000000000000")
	assert.Contains(t, msg.HTML, "$100.00")
	assert.Contains(t, msg.HTML, "https://viny2030.com.ar/comprobante?code=VNY-2026-0001")
}

func TestRenderPaymentInstructionsPerLanguage(t *testing.T) {
	subjects := make(map[string]bool)
	for _, lang := range SupportedLangs() {
		msg := RenderPaymentInstructions(lang, samplePayment())
		assert.NotEmpty(t, msg.HTML, lang)
		assert.Contains(t, msg.Subject, "VNY-2026-0001", lang)
		subjects[msg.Subject] = true
	}
	// cada idioma tiene su propio asunto
	assert.Len(t, subjects, len(SupportedLangs()))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "en", Normalize("en"))
	assert.Equal(t, "en", Normalize(" EN "))
	assert.Equal(t, "es", Normalize("xx"))
	assert.Equal(t, "es", Normalize(""))
}

func TestRenderAdminNewOrderAlwaysSpanish(t *testing.T) {
	msg := RenderAdminNewOrder(AdminOrderData{
		OrderCode: "VNY-2026-0002",
		Name:      "Ana",
		Email:     "ana@x.com",
		Amount:    250.5,
		Currency:  "$",
		Lang:      "de",
	})

	assert.Contains(t, msg.Subject, "Nueva orden VNY-2026-0002")
	assert.Contains(t, msg.HTML, "Nueva orden recibida")
	assert.Contains(t, msg.HTML, "$250.50")
	assert.Contains(t, msg.HTML, "Pendiente de pago")
}

func TestRenderAdminReceipt(t *testing.T) {
	msg := RenderAdminReceipt(AdminReceiptData{
		OrderCode: "VNY-2026-0003",
		FileName:  "VNY-2026-0003_123.pdf",
		Notes:     "transferí desde otra cuenta",
	})

	assert.Contains(t, msg.Subject, "Comprobante recibido")
	assert.Contains(t, msg.HTML, "VNY-2026-0003_123.pdf")
	assert.Contains(t, msg.HTML, "No informado")
	assert.Contains(t, msg.HTML, "transferí desde otra cuenta")
}

func TestRenderPaymentConfirmedLocalized(t *testing.T) {
	en := RenderPaymentConfirmed("en", PaymentData{Name: "Ana", OrderCode: "VNY-2026-0001"})
	es := RenderPaymentConfirmed("xx", PaymentData{Name: "Ana", OrderCode: "VNY-2026-0001"})

	assert.True(t, strings.HasPrefix(en.Subject, "✅ Payment confirmed"))
	assert.True(t, strings.HasPrefix(es.Subject, "✅ Pago confirmado"))
	assert.Contains(t, en.HTML, "VNY-2026-0001")
}
