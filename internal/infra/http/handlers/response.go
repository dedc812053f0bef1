package handlers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Code    string                    `json:"code,omitempty"`
	Details []usecase.ValidationError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("erro ao escrever resposta JSON")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// writeUseCaseError traduz erros de domínio/infra para status HTTP.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	var te *usecase.TechnicalError

	switch {
	case errors.Is(err, entity.ErrClientNotFound), errors.Is(err, entity.ErrActionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrActionAlreadyResolved):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "ACTION_ALREADY_RESOLVED"})
	case errors.As(err, &de):
		status := http.StatusBadRequest
		if de.Code == "CLIENT_ALREADY_EXISTS" {
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Error: de.Message, Code: de.Code})
	case errors.As(err, &te):
		log.Error().Err(te.Err).Str("code", te.Code).Msg(te.Message)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: te.Message, Code: te.Code})
	default:
		log.Error().Err(err).Msg("erro inesperado")
		writeError(w, http.StatusInternalServerError, "erro interno")
	}
}
