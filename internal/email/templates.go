package email

import (
	"fmt"
	"html/template"
)

const layoutCSS = `
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #b45309; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .card { background: white; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }`

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	// Quote delivery, PDF attached
	s.templates["quote"] = template.Must(template.New("quote").Parse(`
<!DOCTYPE html>
<html>
<head><style>` + layoutCSS + `</style></head>
<body>
<div class="container">
    <div class="header">
        <h2>Votre devis</h2>
    </div>
    <div class="content">
        <p>Bonjour{{if .ClientName}} {{.ClientName}}{{end}},</p>
        <p>Veuillez trouver ci-joint notre devis <strong>{{.FileName}}</strong>.</p>
        <p>Nous restons à votre disposition pour toute question.</p>
        <p>Cordialement,<br/>{{.CompanyName}}</p>
    </div>
    <div class="footer">{{.CompanyName}}</div>
</div>
</body>
</html>
`))

	// Daily planning digest for a team member
	s.templates["daily_digest"] = template.Must(template.New("daily_digest").Parse(`
<!DOCTYPE html>
<html>
<head><style>` + layoutCSS + `</style></head>
<body>
<div class="container">
    <div class="header">
        <h2>📅 Planning du {{.Date}}</h2>
    </div>
    <div class="content">
        <p>Bonjour {{.MemberName}},</p>
        <p>Voici vos chantiers du jour :</p>
        {{range .Chantiers}}
        <div class="card">
            <strong>{{.Name}}</strong>{{if .ClientName}} · {{.ClientName}}{{end}}<br/>
            Du {{.Start}} au {{.End}}
        </div>
        {{end}}
        <p>Bonne journée !</p>
    </div>
    <div class="footer">{{.CompanyName}}</div>
</div>
</body>
</html>
`))
}

// QuoteEmailData holds data for quote emails
type QuoteEmailData struct {
	ClientName  string
	FileName    string
	CompanyName string
}

// SendQuote sends a quote PDF as an attachment.
func (s *Service) SendQuote(to, subject string, data QuoteEmailData, pdf []byte) error {
	if subject == "" {
		subject = fmt.Sprintf("Devis %s", data.CompanyName)
	}
	return s.SendWithTemplate([]string{to}, subject, "quote", data, Attachment{
		Filename:    data.FileName,
		ContentType: "application/pdf",
		Data:        pdf,
	})
}

// DigestChantier is one line of the daily digest.
type DigestChantier struct {
	Name       string
	ClientName string
	Start      string
	End        string
}

// DailyDigestData holds data for the daily planning digest
type DailyDigestData struct {
	MemberName  string
	Date        string
	CompanyName string
	Chantiers   []DigestChantier
}
