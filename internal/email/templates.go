package email

// Templates embebidos por defecto. Son deliberadamente simples: el branding
// fino vive en el frontend, este servicio solo necesita entregar el link.

const changeHTMLTmpl = `<!doctype html>
<html>
<body style="font-family: sans-serif; color: #111827;">
  <h2>Confirma tu nuevo email</h2>
  <p>Se solicitó cambiar el email de tu cuenta a <b>{{.Email}}</b>.</p>
  <p><a href="{{.Link}}" style="background:#2563eb;color:#ffffff;padding:10px 18px;border-radius:6px;text-decoration:none;">Confirmar email</a></p>
  <p>El link vence en {{.TTL}}. Si no fuiste tú, ignora este correo:
  el cambio no se completa sin esta confirmación.</p>
</body>
</html>`

const changeTextTmpl = `Confirma tu nuevo email

Se solicitó cambiar el email de tu cuenta a {{.Email}}.
Abre este link para confirmar (vence en {{.TTL}}):

{{.Link}}

Si no fuiste tú, ignora este correo.`

const verifyHTMLTmpl = `<!doctype html>
<html>
<body style="font-family: sans-serif; color: #111827;">
  <h2>Verifica tu email</h2>
  <p>Confirma que <b>{{.Email}}</b> te pertenece.</p>
  <p><a href="{{.Link}}" style="background:#2563eb;color:#ffffff;padding:10px 18px;border-radius:6px;text-decoration:none;">Verificar email</a></p>
  <p>El link vence en {{.TTL}}.</p>
</body>
</html>`

const verifyTextTmpl = `Verifica tu email

Confirma que {{.Email}} te pertenece.
Abre este link (vence en {{.TTL}}):

{{.Link}}`

// linkVars son las variables de los templates de verificación.
type linkVars struct {
	Email string
	Link  string
	TTL   string
}
