package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/constants"
	"github.com/rs/zerolog"
)

// New debug 環境輸出 console 格式, 其餘為 JSON
// level 無法解析時使用 info
func New(env string, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if constants.ENV(env) == constants.Debug {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, level).With().Str("env", env).Logger()
}

func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "shopcore").Logger()
}
