package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// TokenAuth protege as rotas do painel com o API_SECRET_TOKEN.
// Aceita "Authorization: Bearer <token>" ou o token puro.
// Sem token configurado, tudo é recusado.
func TokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				log.Warn().Str("path", r.URL.Path).Msg("🔒 API_SECRET_TOKEN não configurado, acesso negado")
				deny(w, http.StatusForbidden, "API não configurada para acesso autenticado")
				return
			}

			got := strings.TrimSpace(r.Header.Get("Authorization"))
			got = strings.TrimSpace(strings.TrimPrefix(got, "Bearer "))
			if got == "" {
				deny(w, http.StatusUnauthorized, "token de acesso ausente")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("🔒 Token inválido")
				deny(w, http.StatusUnauthorized, "token de acesso inválido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
