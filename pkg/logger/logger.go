package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide structured logger. It is a no-op until Init is called.
var Log = zap.NewNop()

func Init(environment string) {
	// JSON encoder for production-ready logging
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if environment != "production" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("env", environment)),
	)
	if err != nil {
		l, _ = zap.NewProduction()
	}
	Log = l
}

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	_ = Log.Sync()
}
