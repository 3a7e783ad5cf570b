package email

import (
	"fmt"
	"html/template"
	"strings"
)

// Las notificaciones internas van siempre en el idioma del equipo de
// operaciones, sin importar el idioma del cliente.

type AdminOrderData struct {
	OrderCode string
	Name      string
	Email     string
	Amount    float64
	Currency  string
	Product   string
	Lang      string
}

type AdminReceiptData struct {
	OrderCode string
	Name      string
	Email     string
	FileName  string
	Notes     string
}

type WelcomeData struct {
	Name         string
	APIKey       string
	DashboardURL string
	TrialDays    int
}

func RenderAdminNewOrder(d AdminOrderData) Message {
	rows := []string{
		row("Código", d.OrderCode),
		row("Cliente", d.Name),
		row("Email", d.Email),
		row("Monto", formatAmount(d.Currency, d.Amount)),
		row("Idioma", d.Lang),
	}
	if d.Product != "" {
		rows = append(rows, row("Producto", d.Product))
	}
	rows = append(rows, row("Estado", "Pendiente de pago"))

	return Message{
		Subject: fmt.Sprintf("🆕 Nueva orden %s – %s", d.OrderCode, d.Name),
		HTML:    adminBox("Nueva orden recibida", rows),
	}
}

func RenderAdminReceipt(d AdminReceiptData) Message {
	rows := []string{
		row("Código de orden", d.OrderCode),
		row("Cliente", orDefault(d.Name, "No informado")),
		row("Email", orDefault(d.Email, "No informado")),
		row("Archivo", d.FileName),
	}
	if d.Notes != "" {
		rows = append(rows, row("Notas", d.Notes))
	}
	rows = append(rows, `<p>El comprobante está adjunto a este email.</p>`)

	return Message{
		Subject: fmt.Sprintf("💰 Comprobante recibido – %s", d.OrderCode),
		HTML:    adminBox("Comprobante de pago recibido", rows),
	}
}

func RenderCompanyWelcome(d WelcomeData) Message {
	rows := []string{
		"<p>Tu cuenta en Viny 2030 ha sido creada exitosamente.</p>",
		row("Tu API Key", d.APIKey),
		fmt.Sprintf("<p>Tenés %d días de prueba gratuita.</p>", d.TrialDays),
		fmt.Sprintf(`<p>Accedé a tu panel en: <a href="%s">%s</a></p>`,
			template.HTMLEscapeString(d.DashboardURL), template.HTMLEscapeString(d.DashboardURL)),
	}
	return Message{
		Subject: "¡Bienvenido a Viny 2030!",
		HTML:    adminBox(fmt.Sprintf("¡Hola %s!", template.HTMLEscapeString(d.Name)), rows),
	}
}

func row(label, value string) string {
	return fmt.Sprintf("<p><strong>%s:</strong> %s</p>",
		template.HTMLEscapeString(label), template.HTMLEscapeString(value))
}

func adminBox(title string, rows []string) string {
	var sb strings.Builder
	sb.WriteString(`<div style="font-family: Arial; padding: 20px;">`)
	sb.WriteString(fmt.Sprintf(`<h2 style="color: #1a1a2e;">%s</h2>`, template.HTMLEscapeString(title)))
	for _, r := range rows {
		sb.WriteString(r)
	}
	sb.WriteString(`<hr><p style="color:#999; font-size:12px;">Email automático de viny2030.com.ar</p></div>`)
	return sb.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
