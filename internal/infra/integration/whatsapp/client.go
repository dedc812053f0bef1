package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/xavierca1/crm-followup/internal/entity"
)

var ErrNotConfigured = errors.New("whatsapp não configurado")

type Config struct {
	APIURL          string
	Token           string
	Timeout         time.Duration
	MessageTemplate string
}

func (c Config) Configured() bool {
	return c.APIURL != "" && c.Token != ""
}

// Client envia mensagens de texto pela API oficial do WhatsApp Business.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tmpl       *template.Template
	breaker    *gobreaker.CircuitBreaker[*SendMessageResponse]
}

func NewClient(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	tmpl, err := ParseMessageTemplate(cfg.MessageTemplate)
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker[*SendMessageResponse](gobreaker.Settings{
		Name:        "whatsapp-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("⚡ WhatsApp: circuito mudou de estado")
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tmpl:       tmpl,
		breaker:    breaker,
	}, nil
}

func (c *Client) SendFollowUp(ctx context.Context, client *entity.Client) error {
	if strings.TrimSpace(client.Phone) == "" {
		return errors.New("telefone não fornecido")
	}

	body, err := RenderMessage(c.tmpl, client)
	if err != nil {
		return err
	}

	to := FormatPhoneNumber(client.Phone)
	_, err = c.breaker.Execute(func() (*SendMessageResponse, error) {
		return c.send(ctx, to, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn().Err(err).Str("to", to).Msg("⚠️ WhatsApp: envio bloqueado pelo circuit breaker")
		}
		return err
	}

	log.Info().Str("to", to).Msg("✅ WhatsApp: Mensagem enviada")
	return nil
}

func (c *Client) send(ctx context.Context, to, text string) (*SendMessageResponse, error) {
	payload, err := json.Marshal(sendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: text},
	})
	if err != nil {
		return nil, fmt.Errorf("whatsapp: erro ao serializar payload: %w", err)
	}

	url := strings.TrimRight(c.cfg.APIURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: erro ao criar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: erro na requisição: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("❌ WhatsApp: API retornou erro")
		return nil, fmt.Errorf("API retornou status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result SendMessageResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			log.Warn().Err(err).Msg("⚠️ WhatsApp: resposta sem JSON válido")
			return &result, nil
		}
	}
	if result.Error != nil {
		return nil, fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	return &result, nil
}
