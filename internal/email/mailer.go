package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrDeliveryFailed envuelve cualquier fallo de transporte SMTP.
var ErrDeliveryFailed = errors.New("no se pudo entregar el email")

// Sender despacha un correo ya renderizado a un único destinatario.
// Los adjuntos referencian archivos ya guardados por el uploader.
type Sender interface {
	Send(ctx context.Context, to string, msg Message, attachments ...string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, pass, fromName string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   fmt.Sprintf("%s <%s>", fromName, user),
	}
}

// Send entrega el mensaje respetando el deadline del contexto. gomail no
// acepta contextos, así que el envío corre aparte y acá solo se espera.
func (s *SMTPSender) Send(ctx context.Context, to string, msg Message, attachments ...string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	for _, path := range attachments {
		m.Attach(path)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: destinatario %s: %v", ErrDeliveryFailed, to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: destinatario %s: %v", ErrDeliveryFailed, to, ctx.Err())
	}
}
