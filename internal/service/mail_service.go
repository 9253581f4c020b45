package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"

	"bacheliers/config"

	"github.com/wneessen/go-mail"
)

// SendResult is the canonical outcome of one e-mail send.
type SendResult struct {
	Success bool
	Reason  string
}

// Mailer sends one HTML e-mail. Implementations report failures in the result and never panic.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) SendResult
}

var errMailNotConfigured = errors.New("smtp credentials are not configured")

// SMTPMailer delivers through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg *config.MailConfig
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) (res SendResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[MAIL] panic sending to %s: %v", to, r)
			res = SendResult{Reason: fmt.Sprint(r)}
		}
	}()
	if err := m.send(ctx, to, subject, html); err != nil {
		log.Printf("[MAIL] send to %s failed subject=%q: %v", to, subject, err)
		return SendResult{Reason: err.Error()}
	}
	log.Printf("[MAIL] sent to %s subject=%q", to, subject)
	return SendResult{Success: true}
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, html string) error {
	if m.cfg.User == "" || m.cfg.Pass == "" {
		return errMailNotConfigured
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.User); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Pass),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

const (
	SubjectPreliminary = "Votre inscription préliminaire au Bal des Bacheliers 2K25 est enregistrée !"
	SubjectConfirmed   = "Votre paiement pour le Bal des Bacheliers 2K25 est CONFIRMÉ ! 🎉"
	SubjectRejected    = "Problème avec votre paiement pour le Bal des Bacheliers 2K25 😞"
)

var (
	preliminaryTmpl = template.Must(template.New("preliminary").Parse(`<p>Bonjour {{.FirstName}},</p>
<p>Nous vous confirmons que vos informations ont bien été enregistrées pour le Bal des Bacheliers 2K25.</p>
<p>Il ne vous reste plus qu'à finaliser votre inscription en complétant les détails du billet et du paiement.</p>
<p>Connectez-vous à nouveau à l'application pour accéder à la suite du formulaire et finaliser votre place.</p>
<p>Merci et à très bientôt !</p>
<p>L'équipe du Bal des Bacheliers</p>
`))

	confirmedTmpl = template.Must(template.New("confirmed").Parse(`<p>Bonjour {{.FirstName}},</p>
<p>Excellente nouvelle ! Votre paiement pour le Bal des Bacheliers 2K25 a été confirmé avec succès.</p>
<p>Votre inscription est maintenant validée et votre place est sécurisée !</p>
{{if .TicketType}}<p>Billet : <strong>{{.TicketType}}</strong></p>
{{end}}<p>Vous pouvez télécharger votre billet d'invitation <a href="{{.TicketURL}}">ici</a>.</p>
<p>Nous avons hâte de vous voir !</p>
<p>L'équipe du Bal des Bacheliers</p>
`))

	rejectedTmpl = template.Must(template.New("rejected").Parse(`<p>Bonjour {{.FirstName}},</p>
<p>Malheureusement, nous n'avons pas pu confirmer votre paiement pour le Bal des Bacheliers 2K25.</p>
<p>Le statut de votre transaction est : <strong>{{.GatewayStatus}}</strong></p>
<p>Veuillez vérifier les détails de votre paiement ou réessayer. Si le problème persiste, veuillez nous contacter.</p>
<p>Votre numéro de référence d'inscription est : <strong>{{.TransactionRef}}</strong></p>
<p>L'équipe du Bal des Bacheliers</p>
`))
)

type emailData struct {
	FirstName      string
	TicketType     string
	TicketURL      string
	GatewayStatus  string
	TransactionRef string
}

func renderEmail(t *template.Template, data emailData) (string, error) {
	if data.FirstName == "" {
		data.FirstName = "Cher participant"
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
