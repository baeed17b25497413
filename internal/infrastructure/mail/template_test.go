package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tenancy-api/internal/application/ports"
)

func TestRenderInvite(t *testing.T) {
	subject, text, html := renderInvite(ports.InviteMessage{
		BusinessName: "Café <Central>",
		Role:         "admin",
		Token:        "tok-123",
	})

	assert.Equal(t, "Invitación a Café <Central>", subject)
	assert.Contains(t, text, "tok-123")
	assert.Contains(t, text, "como Admin")
	assert.Contains(t, html, "Café &lt;Central&gt;", "el HTML escapa el nombre del negocio")
	assert.NotContains(t, html, "<Central>")
}

func TestLogNotifier_NuncaFalla(t *testing.T) {
	n := NewLogNotifier(nil, true)
	require.NoError(t, n.SendInvite(context.Background(), ports.InviteMessage{InviteID: "i1", Token: "t"}))
}
