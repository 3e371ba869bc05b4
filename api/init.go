package api

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"gitlab.com/testpaper/papergen/internal/logger"
)

var zlog *otelzap.Logger

func init() {
	zlog = logger.OtelZapLogger("api")
}
