package whatsapp

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/xavierca1/crm-followup/internal/entity"
)

const DefaultMessageTemplate = "Olá {{.Name}}! 👋\n\nObrigado por se tornar nosso cliente. Estamos aqui para ajudar!"

func ParseMessageTemplate(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultMessageTemplate
	}
	t, err := template.New("followup").Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template de mensagem inválido: %w", err)
	}
	return t, nil
}

func RenderMessage(t *template.Template, c *entity.Client) (string, error) {
	data := MessageData{Name: c.DisplayName()}
	if c.Procedure != nil {
		data.Procedure = *c.Procedure
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("erro ao montar mensagem: %w", err)
	}
	return buf.String(), nil
}

// FormatPhoneNumber converte para o formato internacional (ex: 11987654321 -> 5511987654321).
func FormatPhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if !strings.HasPrefix(digits, "55") && len(digits) >= 10 {
		digits = "55" + digits
	}
	return digits
}
