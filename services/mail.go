package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type Mail struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// ConsoleMailer logs mail instead of sending it.
type ConsoleMailer struct {
	log *zap.Logger
}

func NewConsoleMailer(log *zap.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (c *ConsoleMailer) Send(_ context.Context, m Mail) error {
	c.log.Info("mail", zap.String("to", m.To), zap.String("subject", m.Subject), zap.String("text", m.Text))
	return nil
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridMailer(apiKey, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendGridMailer) Send(_ context.Context, m Mail) error {
	p := sgmail.NewPersonalization()
	p.Subject = m.Subject
	p.AddTos(sgmail.NewEmail(m.ToName, m.To))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(s.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", m.Text),
		sgmail.NewContent("text/html", m.HTML),
	)

	res, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// GmailMailer sends through the Gmail API with a stored OAuth token that carries
// the gmail.send scope.
type GmailMailer struct {
	service *gmail.Service
	from    string
}

func NewGmailMailer(ctx context.Context, credentialsFile, tokenFile, from string) (*GmailMailer, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(creds, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailMailer{service: service, from: from}, nil
}

func (g *GmailMailer) Send(ctx context.Context, m Mail) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", g.from)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(m.HTML)

	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(b.String()))}
	if _, err := g.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

var verificationTemplate = template.Must(template.New("verify").Parse(`
<table width="680px" cellpadding="0" cellspacing="0" border="0">
  <tbody>
    <tr>
      <td width="10%" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
      <td width="80%" bgcolor="#eeeeee" align="center"><h1>VolunteerHub</h1></td>
      <td width="10%" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
    </tr>
    <tr>
      <td width="10%" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
      <td width="80%" bgcolor="#ffffff" align="center" valign="top" style="line-height:24px;padding:24px">
        <font color="#333333" face="Arial"><span style="font-size:20px">Hello {{.Name}}!</span></font><br>
        <font color="#333333" face="Arial"><span style="font-size:16px">Please confirm your email address to start volunteering.</span></font><br><br>
        <a href="{{.Link}}" style="font-size:18px;color:#cc0000;font-family:Arial">Verify email address</a>
      </td>
      <td width="10%" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
    </tr>
    <tr>
      <td width="10%" height="54" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
      <td width="80%" height="54" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
      <td width="10%" height="54" bgcolor="#eeeeee" style="font-size:0">&nbsp;</td>
    </tr>
  </tbody>
</table>`))

func verificationMail(to, name, link string) (Mail, error) {
	var html bytes.Buffer
	if err := verificationTemplate.Execute(&html, struct{ Name, Link string }{name, link}); err != nil {
		return Mail{}, fmt.Errorf("render verification mail: %w", err)
	}
	return Mail{
		To:      to,
		ToName:  name,
		Subject: "Verify your VolunteerHub email address",
		Text:    fmt.Sprintf("Hello %s, confirm your email address by opening %s", name, link),
		HTML:    html.String(),
	}, nil
}
