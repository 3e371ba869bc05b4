package db

import (
	"gitlab.com/testpaper/papergen/internal/logger"
)

var zlog *logger.Logger

func init() {
	zlog = logger.New("db")
}
