// Package logging adapts zap to the runtime.Logger interface so the game
// packages log the same way inside Nakama and in the standalone server.
package logging

import (
	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap implements runtime.Logger on top of a zap logger.
type Zap struct {
	sugar  *zap.SugaredLogger
	fields map[string]interface{}
}

var _ runtime.Logger = (*Zap)(nil)

// New builds a production zap logger, or a development one when debug is set.
func New(debug bool) (*Zap, error) {
	var (
		base *zap.Logger
		err  error
	)
	if debug {
		base, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		base, err = cfg.Build()
	}
	if err != nil {
		return nil, err
	}
	return Wrap(base), nil
}

// Wrap adapts an existing zap logger.
func Wrap(base *zap.Logger) *Zap {
	return &Zap{sugar: base.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Base returns the underlying structured logger.
func (z *Zap) Base() *zap.Logger {
	return z.sugar.Desugar()
}

func (z *Zap) Debug(format string, v ...interface{}) { z.sugar.Debugf(format, v...) }
func (z *Zap) Info(format string, v ...interface{})  { z.sugar.Infof(format, v...) }
func (z *Zap) Warn(format string, v ...interface{})  { z.sugar.Warnf(format, v...) }
func (z *Zap) Error(format string, v ...interface{}) { z.sugar.Errorf(format, v...) }

func (z *Zap) WithField(key string, v interface{}) runtime.Logger {
	return z.WithFields(map[string]interface{}{key: v})
}

func (z *Zap) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(z.fields)+len(fields))
	for k, v := range z.fields {
		merged[k] = v
	}
	args := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &Zap{sugar: z.sugar.With(args...), fields: merged}
}

func (z *Zap) Fields() map[string]interface{} {
	return z.fields
}

// Sync flushes buffered entries.
func (z *Zap) Sync() error {
	return z.sugar.Sync()
}
