package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

func Init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zapcore.InfoLevel,
	)

	log = zap.New(core)
	log.Info("logger initialized")
}

func Info(msg string, fields map[string]any) {
	log.Info(msg, toZapFields(fields)...)
}

func Warn(msg string, fields map[string]any) {
	log.Warn(msg, toZapFields(fields)...)
}

func Error(msg string, fields map[string]any) {
	log.Error(msg, toZapFields(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	log.Fatal(msg, toZapFields(fields)...)
}

func toZapFields(fields map[string]any) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}
