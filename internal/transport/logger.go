package transport

import (
	"fmt"

	"github.com/rs/zerolog"
)

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger *zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.log(l.logger.Error(), msg, keysAndValues)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.log(l.logger.Warn(), msg, keysAndValues)
}

// Info is demoted to debug; retryablehttp logs every attempt at info.
func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.log(l.logger.Debug(), msg, keysAndValues)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.log(l.logger.Debug(), msg, keysAndValues)
}

func (l leveledLogger) log(event *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if err, ok := keysAndValues[i+1].(error); ok {
			event = event.AnErr(key, err)
			continue
		}
		event = event.Interface(key, keysAndValues[i+1])
	}
	event.Msg(msg)
}
