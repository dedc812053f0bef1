package entity

import (
	"errors"
	"strings"
	"time"
)

var ErrUnparsableDate = errors.New("data em formato desconhecido")

// LooseDate guarda a data exatamente como está no banco. As colunas de agenda
// também são editadas à mão pelo painel, então o texto nem sempre é ISO-8601.
type LooseDate string

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formato brasileiro (dia/mês/ano), como o painel exibe.
var localLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
}

func NewLooseDate(t time.Time) *LooseDate {
	d := LooseDate(t.Format(time.RFC3339))
	return &d
}

// NewDateOnly formata só a parte de data (usado na data da primeira compra).
func NewDateOnly(t time.Time) *LooseDate {
	d := LooseDate(t.Format("2006-01-02"))
	return &d
}

func (d LooseDate) String() string { return string(d) }

func (d LooseDate) IsBlank() bool { return strings.TrimSpace(string(d)) == "" }

// Parse interpreta a data. Valores sem fuso são lidos em loc (nil = time.Local).
func (d LooseDate) Parse(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw := strings.TrimSpace(string(d))
	if raw == "" {
		return time.Time{}, ErrUnparsableDate
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsableDate
}
