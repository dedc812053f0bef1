package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// cronLogger encaminha os logs internos do cron para o zerolog.
type cronLogger struct{}

var _ cron.Logger = cronLogger{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Str("component", "cron").Err(err).Fields(keysAndValues).Msg(msg)
}
