// Package diagnostic turns the root zap logger into the per service
// Diagnostic implementations each service declares.
package diagnostic

import (
	"go.uber.org/zap"
)

type Service struct {
	Logger *zap.Logger
}

func NewService(l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{Logger: l}
}

func (s *Service) NewCmdHandler() *CmdHandler {
	return &CmdHandler{l: s.Logger.With(zap.String("service", "run"))}
}

func (s *Service) NewCounterHandler() *CounterHandler {
	return &CounterHandler{l: s.Logger.With(zap.String("service", "counter"))}
}

func (s *Service) NewAlarmHandler() *AlarmHandler {
	return &AlarmHandler{l: s.Logger.With(zap.String("service", "alarm"))}
}

func (s *Service) NewSlackHandler() *SlackHandler {
	return &SlackHandler{l: s.Logger.With(zap.String("service", "slack"))}
}

func (s *Service) NewStorageHandler() *StorageHandler {
	return &StorageHandler{l: s.Logger.With(zap.String("service", "storage"))}
}

func (s *Service) NewHTTPDHandler() *HTTPDHandler {
	return &HTTPDHandler{l: s.Logger.With(zap.String("service", "http"))}
}
