package fdw

import "log/slog"

// Reporter receives notices meant for the host's user, such as the number of
// rows a scan will produce.
type Reporter interface {
	Info(msg string)
	Warning(msg string)
}

// SlogReporter forwards notices to a slog.Logger.
type SlogReporter struct {
	logger *slog.Logger
}

func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	return &SlogReporter{logger: logger}
}

func (r *SlogReporter) Info(msg string) { r.logger.Info(msg) }

func (r *SlogReporter) Warning(msg string) { r.logger.Warn(msg) }
