package mzap

import (
	"go.uber.org/zap"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
)

// ZapLogger adapts a zap.SugaredLogger to the mlog.Logger interface so call
// sites depend on mlog, never on zap directly.
type ZapLogger struct {
	Logger *zap.SugaredLogger
}

func (l *ZapLogger) Info(args ...any)                 { l.Logger.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...any) { l.Logger.Infof(format, args...) }
func (l *ZapLogger) Infoln(args ...any)               { l.Logger.Infoln(args...) }

func (l *ZapLogger) Error(args ...any)                 { l.Logger.Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.Logger.Errorf(format, args...) }
func (l *ZapLogger) Errorln(args ...any)               { l.Logger.Errorln(args...) }

func (l *ZapLogger) Warn(args ...any)                 { l.Logger.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...any) { l.Logger.Warnf(format, args...) }
func (l *ZapLogger) Warnln(args ...any)               { l.Logger.Warnln(args...) }

func (l *ZapLogger) Debug(args ...any)                 { l.Logger.Debug(args...) }
func (l *ZapLogger) Debugf(format string, args ...any) { l.Logger.Debugf(format, args...) }
func (l *ZapLogger) Debugln(args ...any)               { l.Logger.Debugln(args...) }

func (l *ZapLogger) Fatal(args ...any)                 { l.Logger.Fatal(args...) }
func (l *ZapLogger) Fatalf(format string, args ...any) { l.Logger.Fatalf(format, args...) }
func (l *ZapLogger) Fatalln(args ...any)               { l.Logger.Fatalln(args...) }

// WithFields adds structured context to the logger. It returns a new logger and leaves the original unchanged.
//
//nolint:ireturn
func (l *ZapLogger) WithFields(fields ...any) mlog.Logger {
	return &ZapLogger{Logger: l.Logger.With(fields...)}
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.Logger.Sync()
}
