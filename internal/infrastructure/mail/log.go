package mail

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

var _ ports.InviteNotifier = (*LogNotifier)(nil)

// LogNotifier registra la invitación en el log en lugar de enviarla. Para desarrollo o sin Mailgun.
type LogNotifier struct {
	log *logger.Logger
	// ShowToken incluye el token en claro en el log (solo desarrollo).
	ShowToken bool
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger, showToken bool) *LogNotifier {
	return &LogNotifier{log: logger.OrNop(log).Component("mail"), ShowToken: showToken}
}

func (n *LogNotifier) SendInvite(_ context.Context, msg ports.InviteMessage) error {
	ev := n.log.Info().
		Str("invite_id", msg.InviteID).
		Str("email", msg.InvitedEmail).
		Str("business", msg.BusinessName).
		Str("role", msg.Role)
	if n.ShowToken {
		ev = ev.Str("token", msg.Token)
	}
	ev.Msg("invitación lista para entregar")
	return nil
}
