package whatsapp

import (
	"context"
	"errors"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
)

// MockSender simula o envio. Só falha quando o cliente não tem telefone,
// então o resultado é previsível em desenvolvimento e nos testes.
type MockSender struct {
	tmpl *template.Template
}

func NewMockSender(messageTemplate string) (*MockSender, error) {
	tmpl, err := ParseMessageTemplate(messageTemplate)
	if err != nil {
		return nil, err
	}
	return &MockSender{tmpl: tmpl}, nil
}

func (m *MockSender) SendFollowUp(ctx context.Context, client *entity.Client) error {
	if strings.TrimSpace(client.Phone) == "" {
		return errors.New("telefone não fornecido")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := RenderMessage(m.tmpl, client)
	if err != nil {
		return err
	}
	log.Info().
		Str("to", FormatPhoneNumber(client.Phone)).
		Str("message", body).
		Msg("✅ [MOCK] Mensagem enviada")
	return nil
}
