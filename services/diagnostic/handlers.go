package diagnostic

import (
	"log"
	"time"

	"go.uber.org/zap"
)

// Cmd handler

type CmdHandler struct {
	l *zap.Logger
}

func (h *CmdHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}

func (h *CmdHandler) Info(msg string) {
	h.l.Info(msg)
}

func (h *CmdHandler) StartingCounterd(version, commit, branch string) {
	h.l.Info("counterd starting",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("branch", branch),
	)
}

func (h *CmdHandler) GoVersion(version string, maxprocs int) {
	h.l.Info("go runtime", zap.String("version", version), zap.Int("maxprocs", maxprocs))
}

// Counter handler

type CounterHandler struct {
	l *zap.Logger
}

func (h *CounterHandler) StoreError(method string, err error) {
	h.l.Error("counter store request failed", zap.String("method", method), zap.Error(err))
}

func (h *CounterHandler) InitializedRecord(id string) {
	h.l.Info("initialized missing counter record", zap.String("id", id))
}

func (h *CounterHandler) Served(method string, status int, body string) {
	h.l.Debug("served counter request",
		zap.String("method", method),
		zap.Int("status", status),
		zap.String("body", body),
	)
}

// Alarm handler

type AlarmHandler struct {
	l *zap.Logger
}

func (h *AlarmHandler) ReceivedAlarm(name, state string, message []byte) {
	h.l.Info("received alarm",
		zap.String("alarm", name),
		zap.String("state", state),
		zap.ByteString("message", message),
	)
}

func (h *AlarmHandler) ParameterError(name string, err error) {
	h.l.Error("failed to retrieve webhook parameter", zap.String("parameter", name), zap.Error(err))
}

func (h *AlarmHandler) WebhookHTTPError(code int, reason string) {
	h.l.Error("webhook request failed", zap.Int("status", code), zap.String("reason", reason))
}

func (h *AlarmHandler) WebhookConnectionError(err error) {
	h.l.Error("webhook connection failed", zap.Error(err))
}

func (h *AlarmHandler) MessagePosted(name string) {
	h.l.Info("message posted to slack", zap.String("alarm", name))
}

// Slack handler

type SlackHandler struct {
	l *zap.Logger
}

func (h *SlackHandler) InsecureSkipVerify() {
	h.l.Info("service is configured to skip ssl verification")
}

// Storage handler

type StorageHandler struct {
	l *zap.Logger
}

func (h *StorageHandler) OpenedStore(backend, location string) {
	h.l.Info("opened counter store", zap.String("backend", backend), zap.String("location", location))
}

// HTTPD handler

type HTTPDHandler struct {
	l *zap.Logger
}

func (h *HTTPDHandler) NewHTTPServerErrorLogger() *log.Logger {
	l, err := zap.NewStdLogAt(h.l, zap.ErrorLevel)
	if err != nil {
		return zap.NewStdLog(h.l)
	}
	return l
}

func (h *HTTPDHandler) StartingService() {
	h.l.Info("starting HTTP service")
}

func (h *HTTPDHandler) StoppedService() {
	h.l.Info("closed HTTP service")
}

func (h *HTTPDHandler) ShutdownTimeout() {
	h.l.Error("shutdown timedout, forcefully closing all remaining connections")
}

func (h *HTTPDHandler) ListeningOn(addr string) {
	h.l.Info("listening on", zap.String("addr", addr))
}

func (h *HTTPDHandler) HTTP(method, uri string, status int, reqID string, duration time.Duration) {
	h.l.Info("http request",
		zap.String("method", method),
		zap.String("uri", uri),
		zap.Int("status", status),
		zap.String("request-id", reqID),
		zap.Duration("duration", duration),
	)
}

func (h *HTTPDHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}
