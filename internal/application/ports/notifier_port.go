package ports

import "context"

// InviteMessage datos necesarios para entregar una invitación fuera de banda.
type InviteMessage struct {
	InviteID     string
	BusinessName string
	InvitedEmail string
	Role         string
	Token        string // valor en claro; nunca se persiste
}

// InviteNotifier puerto de salida para entregar el token de invitación (Mailgun, log, mock).
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type InviteNotifier interface {
	SendInvite(ctx context.Context, msg InviteMessage) error
}
