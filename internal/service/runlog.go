package service

import (
	"fmt"

	"go.uber.org/zap"
)

// runLog collects the ordered, human-readable progress lines of one
// generation run and mirrors every line to the structured logger.
type runLog struct {
	logger *zap.Logger
	lines  []string
}

func newRunLog(logger *zap.Logger) *runLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &runLog{logger: logger}
}

func (l *runLog) Infof(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	l.lines = append(l.lines, line)
	l.logger.Info(line)
}

func (l *runLog) Warnf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	l.lines = append(l.lines, line)
	l.logger.Warn(line)
}

func (l *runLog) Lines() []string {
	return l.lines
}
