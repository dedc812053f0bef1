package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // imagens sem zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	NotifierWhatsApp = "whatsapp"
	NotifierEmail    = "email"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"5000"`
	DatabaseURL    string   `env:"DATABASE_URL,required"`
	APISecretToken string   `env:"API_SECRET_TOKEN"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	// Requisições por minuto por IP no webhook. 0 desliga.
	WebhookRateLimit int `env:"WEBHOOK_RATE_LIMIT" envDefault:"60"`

	Notifier    string         `env:"NOTIFIER" envDefault:"whatsapp"`
	WhatsApp    WhatsAppConfig `envPrefix:"WHATSAPP_"`
	Mail        MailConfig     `envPrefix:"MAIL_"`
	RabbitMQURL string         `env:"RABBITMQ_URL"`

	Log LogConfig `envPrefix:"LOG_"`

	PolicyFile string         `env:"FOLLOWUP_CONFIG"`
	FollowUp   FollowUpConfig `envPrefix:"FOLLOWUP_"`
}

type WhatsAppConfig struct {
	APIURL   string        `env:"API_URL"`
	Token    string        `env:"TOKEN"`
	MockMode bool          `env:"MOCK_MODE" envDefault:"false"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type MailConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"json"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"30"`
}

// FollowUpConfig é a política do acompanhamento. Pode vir do ambiente
// (FOLLOWUP_*) ou do arquivo YAML apontado por FOLLOWUP_CONFIG, que tem prioridade.
type FollowUpConfig struct {
	CronSpec        string        `env:"CRON" envDefault:"0 9 * * *" yaml:"cron"`
	ReferenceDays   int           `env:"REFERENCE_DAYS" envDefault:"7" yaml:"reference_days"`
	SecondWaveDays  int           `env:"SECOND_WAVE_DAYS" envDefault:"14" yaml:"second_wave_days"`
	Timezone        string        `env:"TIMEZONE" envDefault:"America/Sao_Paulo" yaml:"timezone"`
	GatewayTimeout  time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s" yaml:"gateway_timeout"`
	StaleAfter      time.Duration `env:"STALE_AFTER" envDefault:"24h" yaml:"stale_after"`
	MessageTemplate string        `env:"MESSAGE_TEMPLATE" yaml:"message_template"`
}

// Load lê o .env (se existir), o ambiente e o arquivo de política.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("carregar .env: %w", err)
	}
	return Parse(nil)
}

// Parse monta a configuração a partir de environment. nil usa o ambiente do processo.
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config
	opts := env.Options{Environment: environment}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("ler variáveis de ambiente: %w", err)
	}

	if cfg.PolicyFile != "" {
		if err := cfg.FollowUp.mergeFile(cfg.PolicyFile); err != nil {
			return nil, err
		}
	}

	cfg.Notifier = strings.ToLower(strings.TrimSpace(cfg.Notifier))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (f *FollowUpConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ler política %s: %w", path, err)
	}
	// Campos ausentes no YAML mantêm o valor do ambiente.
	if err := yaml.Unmarshal(data, f); err != nil {
		return fmt.Errorf("política %s inválida: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Notifier != NotifierWhatsApp && c.Notifier != NotifierEmail {
		errs = append(errs, fmt.Errorf("NOTIFIER deve ser %q ou %q, recebido %q", NotifierWhatsApp, NotifierEmail, c.Notifier))
	}
	if c.WebhookRateLimit < 0 {
		errs = append(errs, errors.New("WEBHOOK_RATE_LIMIT não pode ser negativo"))
	}

	f := c.FollowUp
	if _, err := cron.ParseStandard(f.CronSpec); err != nil {
		errs = append(errs, fmt.Errorf("cron %q inválido: %w", f.CronSpec, err))
	}
	if f.ReferenceDays < 0 {
		errs = append(errs, errors.New("reference_days não pode ser negativo"))
	}
	if f.SecondWaveDays <= 0 {
		errs = append(errs, errors.New("second_wave_days deve ser positivo"))
	}
	if f.GatewayTimeout <= 0 {
		errs = append(errs, errors.New("gateway_timeout deve ser positivo"))
	}
	if _, err := time.LoadLocation(f.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q inválido: %w", f.Timezone, err))
	}

	return errors.Join(errs...)
}

// Location devolve o fuso da política. Validate já garantiu que ele existe.
func (f FollowUpConfig) Location() *time.Location {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Addr devolve o endereço de escuta do servidor HTTP.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
