package mail

import (
	"bytes"
	htmltpl "html/template"
	"strings"
	texttpl "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/Tenancy-api/internal/application/ports"
)

var (
	inviteText = texttpl.Must(texttpl.New("invite.txt").Parse(
		`Te invitaron a unirte a {{.BusinessName}} como {{.Role}}.

Usa este código para aceptar la invitación:

{{.Token}}

Si no esperabas este correo puedes ignorarlo.
`))

	inviteHTML = htmltpl.Must(htmltpl.New("invite.html").Parse(
		`<p>Te invitaron a unirte a <strong>{{.BusinessName}}</strong> como <strong>{{.Role}}</strong>.</p>
<p>Usa este código para aceptar la invitación:</p>
<p><code>{{.Token}}</code></p>
<p>Si no esperabas este correo puedes ignorarlo.</p>
`))

	titleCase = cases.Title(language.Spanish)
)

// renderInvite arma asunto, texto plano y HTML del correo de invitación.
func renderInvite(msg ports.InviteMessage) (subject, text, html string) {
	data := msg
	data.Role = titleCase.String(strings.ToLower(msg.Role))

	var tb, hb bytes.Buffer
	// Las plantillas son fijas y los datos son strings: Execute no falla.
	_ = inviteText.Execute(&tb, data)
	_ = inviteHTML.Execute(&hb, data)
	return "Invitación a " + msg.BusinessName, tb.String(), hb.String()
}
