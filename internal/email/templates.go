// Package email contiene el renderizado de correos y el envío SMTP.
// El renderizado es puro: mismos datos de entrada, mismo HTML de salida.
package email

import (
	"fmt"
	"html/template"
	"strings"
)

type Message struct {
	Subject string
	HTML    string
}

// BankDetails son los datos de destino de pago. Vienen de configuración,
// jamás de literales en las plantillas.
type BankDetails struct {
	Name   string
	Holder string
	CBU    string
	Alias  string
}

type PaymentData struct {
	Name      string
	OrderCode string
	Amount    float64
	Currency  string
	Product   string
	UploadURL string
	Bank      BankDetails
}

// DefaultLang es el idioma de respaldo para códigos no soportados y el
// idioma fijo de las notificaciones internas.
const DefaultLang = "es"

type bundle struct {
	subject      string // fmt con el código de orden
	greeting     string // fmt con el nombre
	intro        string
	paymentTitle string
	labelBank    string
	labelHolder  string
	labelCBU     string
	labelAlias   string
	labelAmount  string
	labelCode    string
	upload       string
	uploadBtn    string
	deadline     string
	footer       string
	thanks       string

	confirmedSubject string // fmt con el código de orden
	confirmedBody    string // fmt con el nombre
}

var bundles = map[string]bundle{
	"es": {
		subject:      "✅ Orden %s – Datos de pago | Viny 2030",
		greeting:     "Hola %s,",
		intro:        "Gracias por tu pedido. A continuación encontrás los datos para realizar la transferencia bancaria:",
		paymentTitle: "💳 DATOS DE PAGO",
		labelBank:    "Banco",
		labelHolder:  "Titular",
		labelCBU:     "CBU",
		labelAlias:   "Alias",
		labelAmount:  "Monto a transferir",
		labelCode:    "Código de orden",
		upload:       "Una vez realizado el pago, subí tu comprobante en:",
		uploadBtn:    "Subir comprobante",
		deadline:     "⚠️ Tenés 48 horas para completar el pago.",
		footer:       "Si tenés alguna consulta, respondé este email.",
		thanks:       "¡Gracias por confiar en Viny 2030!",

		confirmedSubject: "✅ Pago confirmado – Orden %s | Viny 2030",
		confirmedBody:    "Hola %s, confirmamos la recepción de tu pago. ¡Gracias por confiar en Viny 2030!",
	},
	"en": {
		subject:      "✅ Order %s – Payment details | Viny 2030",
		greeting:     "Hello %s,",
		intro:        "Thank you for your order. Below you will find the bank transfer details:",
		paymentTitle: "💳 PAYMENT DETAILS",
		labelBank:    "Bank",
		labelHolder:  "Account holder",
		labelCBU:     "CBU",
		labelAlias:   "Alias",
		labelAmount:  "Amount to transfer",
		labelCode:    "Order code",
		upload:       "Once payment is done, upload your receipt at:",
		uploadBtn:    "Upload receipt",
		deadline:     "⚠️ You have 48 hours to complete the payment.",
		footer:       "If you have any questions, reply to this email.",
		thanks:       "Thank you for choosing Viny 2030!",

		confirmedSubject: "✅ Payment confirmed – Order %s | Viny 2030",
		confirmedBody:    "Hello %s, we have confirmed your payment. Thank you for choosing Viny 2030!",
	},
	"fr": {
		subject:      "✅ Commande %s – Détails de paiement | Viny 2030",
		greeting:     "Bonjour %s,",
		intro:        "Merci pour votre commande. Voici les coordonnées bancaires pour effectuer le virement :",
		paymentTitle: "💳 DÉTAILS DE PAIEMENT",
		labelBank:    "Banque",
		labelHolder:  "Titulaire",
		labelCBU:     "CBU",
		labelAlias:   "Alias",
		labelAmount:  "Montant à transférer",
		labelCode:    "Code de commande",
		upload:       "Une fois le paiement effectué, téléchargez votre reçu ici :",
		uploadBtn:    "Télécharger le reçu",
		deadline:     "⚠️ Vous avez 48 heures pour finaliser le paiement.",
		footer:       "Pour toute question, répondez à cet email.",
		thanks:       "Merci de faire confiance à Viny 2030 !",

		confirmedSubject: "✅ Paiement confirmé – Commande %s | Viny 2030",
		confirmedBody:    "Bonjour %s, nous confirmons la réception de votre paiement. Merci de faire confiance à Viny 2030 !",
	},
	"de": {
		subject:      "✅ Bestellung %s – Zahlungsdaten | Viny 2030",
		greeting:     "Hallo %s,",
		intro:        "Vielen Dank für Ihre Bestellung. Hier sind die Bankdaten für die Überweisung:",
		paymentTitle: "💳 ZAHLUNGSDATEN",
		labelBank:    "Bank",
		labelHolder:  "Kontoinhaber",
		labelCBU:     "CBU",
		labelAlias:   "Alias",
		labelAmount:  "Zu überweisender Betrag",
		labelCode:    "Bestellcode",
		upload:       "Nach der Zahlung laden Sie Ihren Beleg hier hoch:",
		uploadBtn:    "Beleg hochladen",
		deadline:     "⚠️ Sie haben 48 Stunden, um die Zahlung abzuschließen.",
		footer:       "Bei Fragen antworten Sie auf diese E-Mail.",
		thanks:       "Vielen Dank, dass Sie Viny 2030 gewählt haben!",

		confirmedSubject: "✅ Zahlung bestätigt – Bestellung %s | Viny 2030",
		confirmedBody:    "Hallo %s, wir bestätigen den Eingang Ihrer Zahlung. Vielen Dank, dass Sie Viny 2030 gewählt haben!",
	},
	"it": {
		subject:      "✅ Ordine %s – Dati di pagamento | Viny 2030",
		greeting:     "Ciao %s,",
		intro:        "Grazie per il tuo ordine. Di seguito trovi i dati bancari per effettuare il bonifico:",
		paymentTitle: "💳 DATI DI PAGAMENTO",
		labelBank:    "Banca",
		labelHolder:  "Intestatario",
		labelCBU:     "CBU",
		labelAlias:   "Alias",
		labelAmount:  "Importo da trasferire",
		labelCode:    "Codice ordine",
		upload:       "Una volta effettuato il pagamento, carica la ricevuta qui:",
		uploadBtn:    "Carica ricevuta",
		deadline:     "⚠️ Hai 48 ore per completare il pagamento.",
		footer:       "Per qualsiasi domanda, rispondi a questa email.",
		thanks:       "Grazie per aver scelto Viny 2030!",

		confirmedSubject: "✅ Pagamento confermato – Ordine %s | Viny 2030",
		confirmedBody:    "Ciao %s, confermiamo la ricezione del tuo pagamento. Grazie per aver scelto Viny 2030!",
	},
}

// SupportedLangs lista los idiomas con bundle propio.
func SupportedLangs() []string {
	return []string{"es", "en", "fr", "de", "it"}
}

// Normalize devuelve el idioma soportado o el de respaldo. Nunca falla.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := bundles[lang]; ok {
		return lang
	}
	return DefaultLang
}

var paymentTmpl = template.Must(template.New("payment").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background: #f9f9f9; padding: 20px;">
  <div style="background: #1a1a2e; padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">
    <h1 style="color: #c9a84c; margin: 0; font-size: 28px;">VINY 2030</h1>
  </div>
  <div style="background: white; padding: 30px; border-radius: 0 0 10px 10px;">
    <p style="font-size: 16px; color: #333;">{{.Greeting}}</p>
    <p style="color: #555;">{{.Intro}}</p>

    <div style="background: #fff3cd; border: 1px dashed #c9a84c; padding: 15px; border-radius: 5px; margin: 20px 0; text-align: center;">
      <p style="margin: 0; color: #856404; font-size: 12px;">{{.LabelCode}}</p>
      <p style="margin: 5px 0 0; font-family: monospace; font-size: 22px; font-weight: bold; color: #1a1a2e;">{{.OrderCode}}</p>
    </div>

    <div style="background: #f0f4ff; border-left: 4px solid #c9a84c; padding: 20px; border-radius: 5px; margin: 20px 0;">
      <h3 style="margin: 0 0 15px; color: #1a1a2e;">{{.PaymentTitle}}</h3>
      <table style="width: 100%; border-collapse: collapse;">
        <tr><td style="padding: 6px 0; color: #666; width: 40%;">{{.LabelBank}}</td><td style="padding: 6px 0; font-weight: bold; color: #333;">{{.Bank.Name}}</td></tr>
        <tr><td style="padding: 6px 0; color: #666;">{{.LabelHolder}}</td><td style="padding: 6px 0; font-weight: bold; color: #333;">{{.Bank.Holder}}</td></tr>
        <tr><td style="padding: 6px 0; color: #666;">{{.LabelCBU}}</td><td style="padding: 6px 0; font-weight: bold; color: #1a1a2e; letter-spacing: 1px;">{{.Bank.CBU}}</td></tr>
        <tr><td style="padding: 6px 0; color: #666;">{{.LabelAlias}}</td><td style="padding: 6px 0; font-weight: bold; color: #c9a84c; font-size: 18px;">{{.Bank.Alias}}</td></tr>
        <tr><td style="padding: 6px 0; color: #666;">{{.LabelAmount}}</td><td style="padding: 6px 0; font-weight: bold; color: #333; font-size: 20px;">{{.AmountDisplay}}</td></tr>
      </table>
    </div>

    <div style="text-align: center; margin: 25px 0;">
      <p style="color: #555;">{{.Upload}}</p>
      <a href="{{.UploadURL}}" style="background: #c9a84c; color: #1a1a2e; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-size: 16px; font-weight: bold; display: inline-block;">{{.UploadBtn}}</a>
    </div>

    <p style="background: #fff3cd; border-left: 3px solid #c9a84c; padding: 12px 16px; color: #856404;">{{.Deadline}}</p>

    <p style="color: #999; font-size: 12px; text-align: center; margin-top: 30px;">{{.Footer}}<br>{{.Thanks}}</p>
  </div>
</div>`))

type paymentView struct {
	Greeting      string
	Intro         string
	PaymentTitle  string
	LabelBank     string
	LabelHolder   string
	LabelCBU      string
	LabelAlias    string
	LabelAmount   string
	LabelCode     string
	Upload        string
	UploadBtn     string
	Deadline      string
	Footer        string
	Thanks        string
	OrderCode     string
	AmountDisplay string
	UploadURL     template.URL
	Bank          BankDetails
}

// RenderPaymentInstructions arma el correo de datos de pago para el
// cliente en su idioma, con fallback determinista al idioma por defecto.
func RenderPaymentInstructions(lang string, data PaymentData) Message {
	b := bundles[Normalize(lang)]

	view := paymentView{
		Greeting:      fmt.Sprintf(b.greeting, data.Name),
		Intro:         b.intro,
		PaymentTitle:  b.paymentTitle,
		LabelBank:     b.labelBank,
		LabelHolder:   b.labelHolder,
		LabelCBU:      b.labelCBU,
		LabelAlias:    b.labelAlias,
		LabelAmount:   b.labelAmount,
		LabelCode:     b.labelCode,
		Upload:        b.upload,
		UploadBtn:     b.uploadBtn,
		Deadline:      b.deadline,
		Footer:        b.footer,
		Thanks:        b.thanks,
		OrderCode:     data.OrderCode,
		AmountDisplay: formatAmount(data.Currency, data.Amount),
		UploadURL:     template.URL(data.UploadURL),
		Bank:          data.Bank,
	}

	var sb strings.Builder
	// La plantilla está compilada en init; ejecutar sobre un builder no falla.
	_ = paymentTmpl.Execute(&sb, view)

	return Message{
		Subject: fmt.Sprintf(b.subject, data.OrderCode),
		HTML:    sb.String(),
	}
}

// RenderPaymentConfirmed arma la confirmación de pago para el cliente.
func RenderPaymentConfirmed(lang string, data PaymentData) Message {
	b := bundles[Normalize(lang)]
	return Message{
		Subject: fmt.Sprintf(b.confirmedSubject, data.OrderCode),
		HTML: fmt.Sprintf(
			`<div style="font-family: Arial, sans-serif; padding: 20px;"><p>%s</p><p style="font-family: monospace; font-size: 18px;">%s</p></div>`,
			template.HTMLEscapeString(fmt.Sprintf(b.confirmedBody, data.Name)),
			template.HTMLEscapeString(data.OrderCode),
		),
	}
}

func formatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s%.2f", currency, amount)
}
