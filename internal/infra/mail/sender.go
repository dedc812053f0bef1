package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
	"gopkg.in/gomail.v2"
)

var ErrNoEmail = errors.New("cliente sem email cadastrado")

const DefaultEmailTemplate = `Olá {{.Name}}!

Obrigado por se tornar nosso cliente.{{if .Procedure}} Esperamos que esteja tudo bem depois do seu {{.Procedure}}.{{end}}
Estamos aqui para ajudar! É só responder este email.
`

// NewEmailSender monta o remetente SMTP. messageTemplate é o mesmo
// FOLLOWUP_MESSAGE_TEMPLATE do WhatsApp; vazio usa DefaultEmailTemplate.
func NewEmailSender(host string, port int, user, password, from, messageTemplate string) (*EmailSender, error) {
	if strings.TrimSpace(messageTemplate) == "" {
		messageTemplate = DefaultEmailTemplate
	}
	tmpl, err := template.New("followup_email").Option("missingkey=zero").Parse(messageTemplate)
	if err != nil {
		return nil, fmt.Errorf("template de email inválido: %w", err)
	}

	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		tmpl:     tmpl,
	}
	d := gomail.NewDialer(host, port, user, password)
	s.send = func(m *gomail.Message) error { return d.DialAndSend(m) }
	return s, nil
}

func (s *EmailSender) SendFollowUp(ctx context.Context, client *entity.Client) error {
	if client.Email == nil || *client.Email == "" {
		return ErrNoEmail
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := FollowUpEmailData{Name: client.DisplayName()}
	if client.Procedure != nil {
		data.Procedure = *client.Procedure
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", *client.Email)
	m.SetHeader("Subject", fmt.Sprintf("Como você está, %s?", data.Name))
	m.SetBody("text/plain", body.String())

	if err := s.send(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	log.Info().Int64("client_id", client.ID).Msg("📧 Email de acompanhamento enviado")
	return nil
}
