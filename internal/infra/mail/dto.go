package mail

import (
	"text/template"

	"gopkg.in/gomail.v2"
)

type FollowUpEmailData struct {
	Name      string
	Procedure string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	tmpl *template.Template

	// send é trocado nos testes para não abrir conexão SMTP.
	send func(m *gomail.Message) error
}
