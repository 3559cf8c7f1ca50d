package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// One JSON logger per concern. They default to no-ops so packages can log
// unconditionally; Init swaps in the real file-backed loggers.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
)

func newLogger(path string, level zapcore.Level) (*zap.Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(file),
		level,
	)
	return zap.New(core), nil
}

// Init creates the log directory and replaces the no-op loggers with
// file-backed ones.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var err error
	if ErrorLogger, err = newLogger(filepath.Join(dir, "errors.log"), zapcore.ErrorLevel); err != nil {
		return err
	}
	if AuditLogger, err = newLogger(filepath.Join(dir, "audit.log"), zapcore.InfoLevel); err != nil {
		return err
	}
	if RequestLogger, err = newLogger(filepath.Join(dir, "request.log"), zapcore.InfoLevel); err != nil {
		return err
	}
	if SecurityLogger, err = newLogger(filepath.Join(dir, "security.log"), zapcore.WarnLevel); err != nil {
		return err
	}
	if SystemLogger, err = newLogger(filepath.Join(dir, "system.log"), zapcore.InfoLevel); err != nil {
		return err
	}
	return nil
}

func Sync() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
