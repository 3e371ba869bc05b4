package logger

import (
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitlab.com/testpaper/papergen/internal/config"
)

const debugEnv = "PAPERGEN_DEBUG"

type Logger struct {
	*zap.Logger
}

func debugEnabled() bool {
	_, debug := os.LookupEnv(debugEnv)
	return debug || config.GetConfig().General.Debug
}

func (l *Logger) init() error {
	var err error
	if debugEnabled() {
		zapConfig := zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l.Logger, err = zapConfig.Build()
	} else {
		l.Logger, err = zap.NewProduction()
	}

	return err
}

// New takes in a package to initialize the new Logger in.
func New(pkg string) *Logger {
	Log := &Logger{}
	if err := Log.init(); err != nil {
		panic(err)
	}

	Log.Logger = Log.Logger.With(
		zap.String("package", pkg),
	)

	return Log
}

// OtelZapLogger returns a logger for pkg that also records entries on the active span
// of the context passed to its Ctx methods.
func OtelZapLogger(pkg string) *otelzap.Logger {
	return otelzap.New(New(pkg).Logger, otelzap.WithMinLevel(zapcore.InfoLevel))
}
