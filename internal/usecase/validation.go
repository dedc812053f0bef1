package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xavierca1/crm-followup/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
	nonDigits    = regexp.MustCompile(`\D`)
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("br_phone", func(fl validator.FieldLevel) bool {
			return checkPhone(fl.Field().String()) == ""
		})
		_ = validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return isValidCPF(fl.Field().String())
		})
		_ = validate.RegisterValidation("loose_date", func(fl validator.FieldLevel) bool {
			_, err := entity.LooseDate(fl.Field().String()).Parse(nil)
			return err == nil
		})
	})
	return validate
}

func ValidateRegisterClientInput(input RegisterClientInput) []ValidationError {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	err := getValidator().Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: fieldMessage(fe, input)})
	}
	return out
}

func fieldMessage(fe validator.FieldError, input RegisterClientInput) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email":
		return "is invalid"
	case "cpf":
		return "is invalid"
	case "br_phone":
		return checkPhone(input.Phone)
	case "loose_date":
		return "must be a valid date (YYYY-MM-DD or DD/MM/YYYY)"
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}

// checkPhone devolve "" para telefone válido ou o motivo da recusa.
// Aceita (11) 98765-4321, 11987654321, +55 11 98765-4321.
func checkPhone(phone string) string {
	digits := SanitizePhone(phone)
	if digits == "" {
		return "is required"
	}
	if len(digits) < 10 || len(digits) > 11 {
		return fmt.Sprintf("must have 10 or 11 digits with area code, got %d", len(digits))
	}

	ddd := digits[:2]
	if ddd < "11" {
		return fmt.Sprintf("invalid area code: %s", ddd)
	}

	number := digits[2:]
	switch len(number) {
	case 9:
		if number[0] != '9' {
			return "mobile numbers must start with 9"
		}
	case 8:
		if number[0] == '0' || number[0] == '1' {
			return "invalid landline number"
		}
	}
	return ""
}

func isValidCPF(cpf string) bool {
	cleaned := SanitizeCPF(cpf)
	if len(cleaned) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != cleaned[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return cpfCheckDigit(cleaned[:9], 10) == int(cleaned[9]-'0') &&
		cpfCheckDigit(cleaned[:10], 11) == int(cleaned[10]-'0')
}

func cpfCheckDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// SanitizePhone deixa só dígitos e remove o código do país (55) quando sobra.
func SanitizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		digits = digits[2:]
	}
	return digits
}

func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func SanitizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}
