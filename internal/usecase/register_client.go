package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
)

type RegisterClientUseCase struct {
	Repo      ClientCreator
	Publisher ClientEventPublisher
	Location  *time.Location
	Now       func() time.Time
}

func NewRegisterClientUseCase(repo ClientCreator, publisher ClientEventPublisher, loc *time.Location) *RegisterClientUseCase {
	return &RegisterClientUseCase{
		Repo:      repo,
		Publisher: publisher,
		Location:  loc,
		Now:       time.Now,
	}
}

func (uc *RegisterClientUseCase) Execute(ctx context.Context, input RegisterClientInput, origin string) (*RegisterClientOutput, error) {
	if validationErrors := ValidateRegisterClientInput(input); len(validationErrors) > 0 {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, e.Field+" ("+e.Message+")")
		}
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed: " + strings.Join(msgs, ", "),
		}
	}

	client, err := entity.NewClient(input.Name, SanitizePhone(input.Phone))
	if err != nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: err.Error()}
	}
	client.CreatedAt = uc.now()

	if s := strings.TrimSpace(input.Status); s != "" {
		client.Status = s
	}
	if email := SanitizeEmail(input.Email); email != "" {
		client.Email = &email
	}
	if cpf := SanitizeCPF(input.CPF); cpf != "" {
		client.CPF = &cpf
	}
	if raw := strings.TrimSpace(input.FirstPurchaseDate); raw != "" {
		purchase, err := entity.LooseDate(raw).Parse(uc.Location)
		if err != nil {
			return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "first_purchase_date: " + err.Error()}
		}
		client.FirstPurchaseDate = entity.NewDateOnly(purchase)
	}
	if p := strings.TrimSpace(input.Procedure); p != "" {
		client.Procedure = &p
	}
	if input.AmountPaid != nil {
		amount := *input.AmountPaid
		client.AmountPaid = &amount
	}
	if n := strings.TrimSpace(input.Notes); n != "" {
		client.Notes = &n
	}

	if err := uc.Repo.Create(ctx, client); err != nil {
		if errors.Is(err, entity.ErrDuplicateClient) {
			return nil, &DomainError{Code: "CLIENT_ALREADY_EXISTS", Message: err.Error()}
		}
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist client: " + err.Error(),
			Err:     err,
		}
	}

	log.Info().
		Int64("client_id", client.ID).
		Str("origin", origin).
		Msg("✅ Cliente cadastrado")

	if uc.Publisher != nil {
		event := ClientRegisteredEvent{
			EventID:    uuid.New().String(),
			ClientID:   client.ID,
			Name:       client.Name,
			Phone:      client.Phone,
			Origin:     origin,
			OccurredAt: client.CreatedAt,
		}
		if err := uc.Publisher.PublishClientRegistered(ctx, event); err != nil {
			log.Warn().Err(err).Int64("client_id", client.ID).Msg("⚠️ Falha ao publicar evento de cadastro")
		}
	}

	return &RegisterClientOutput{
		ClientID: client.ID,
		Message:  "Cliente cadastrado com sucesso!",
	}, nil
}

func (uc *RegisterClientUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
