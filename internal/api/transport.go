package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type loggingRoundTripper struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (l loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := l.base.RoundTrip(req)
	if err != nil {
		l.log.Warn("outbound request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return res, err
	}
	l.log.Debug("outbound request",
		zap.String("method", req.Method),
		zap.String("authority", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Bool("authenticated", req.Header.Get("Authorization") != ""),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", res.StatusCode))
	return res, nil
}

func newLoggingRoundTripper(base http.RoundTripper, log *zap.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return loggingRoundTripper{base: base, log: log}
}
