package mail

import (
	"context"
	"fmt"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/jhoicas/Tenancy-api/internal/application/ports"
)

var _ ports.InviteNotifier = (*MailgunNotifier)(nil)

// MailgunNotifier entrega invitaciones por correo vía la API de Mailgun.
// El timeout lo pone el llamador en ctx.
type MailgunNotifier struct {
	client mg.Mailgun
	sender string
}

// NewMailgunNotifier construye el notificador con dominio, API key y remitente.
func NewMailgunNotifier(domain, apiKey, sender string) *MailgunNotifier {
	return &MailgunNotifier{client: mg.NewMailgun(domain, apiKey), sender: sender}
}

// SendInvite envía el correo con el token de invitación.
func (n *MailgunNotifier) SendInvite(ctx context.Context, msg ports.InviteMessage) error {
	subject, text, html := renderInvite(msg)
	m := n.client.NewMessage(n.sender, subject, text, msg.InvitedEmail)
	m.SetHtml(html)
	if _, _, err := n.client.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
