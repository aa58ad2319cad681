package libav

import (
	"fmt"
	"strings"
	"sync"

	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/iancoleman/strcase"
)

// logLevels maps the logger levels to the FFmpeg ones; FFmpeg's "verbose"
// is our debug and FFmpeg's "debug" is our trace.
var logLevels = []struct {
	belt   logger.Level
	astiav astiav.LogLevel
}{
	{logger.LevelUndefined, astiav.LogLevelQuiet},
	{logger.LevelPanic, astiav.LogLevelPanic},
	{logger.LevelFatal, astiav.LogLevelFatal},
	{logger.LevelError, astiav.LogLevelError},
	{logger.LevelWarning, astiav.LogLevelWarning},
	{logger.LevelInfo, astiav.LogLevelInfo},
	{logger.LevelDebug, astiav.LogLevelVerbose},
	{logger.LevelTrace, astiav.LogLevelDebug},
}

// LogLevelToAstiav falls back to the warning level on unknown levels.
func LogLevelToAstiav(level logger.Level) astiav.LogLevel {
	for _, l := range logLevels {
		if l.belt == level {
			return l.astiav
		}
	}
	return astiav.LogLevelWarning
}

func LogLevelFromAstiav(level astiav.LogLevel) logger.Level {
	for _, l := range logLevels {
		if l.astiav == level {
			return l.belt
		}
	}
	return logger.LevelWarning
}

func classCategoryToString(
	cat astiav.ClassCategory,
) string {
	switch cat {
	case astiav.ClassCategoryBitstreamFilter:
		return "BitstreamFilter"
	case astiav.ClassCategoryDecoder:
		return "Decoder"
	case astiav.ClassCategoryDemuxer:
		return "Demuxer"
	case astiav.ClassCategoryInput:
		return "Input"
	case astiav.ClassCategoryNa:
		return "Na"
	case astiav.ClassCategorySwresampler:
		return "Swresampler"
	case astiav.ClassCategorySwscaler:
		return "Swscaler"
	default:
		return fmt.Sprintf("unexpected_class_category_%d", cat)
	}
}

// LogCallback returns a callback forwarding FFmpeg logs to l; the FFmpeg
// class chain of the message is attached as field "av_class".
func LogCallback(l logger.Logger) astiav.LogCallback {
	var locker sync.Mutex
	return func(c astiav.Classer, level astiav.LogLevel, format, msg string) {
		locker.Lock()
		defer locker.Unlock()

		entryLogger := l
		if c != nil {
			var chain []string
			for cl := c.Class(); cl != nil; cl = cl.Parent() {
				chain = append(chain, fmt.Sprintf(
					"[%s]%s:%s",
					strcase.ToSnake(classCategoryToString(cl.Category())),
					cl.Name(),
					cl.ItemName(),
				))
			}
			if len(chain) > 0 {
				entryLogger = l.WithField("av_class", strings.Join(chain, "->"))
			}
		}
		entryLogger.Logf(LogLevelFromAstiav(level), "%s", strings.TrimSpace(msg))
	}
}

// SetLogger routes the FFmpeg logs to l, at the level of l.
func SetLogger(l logger.Logger) {
	astiav.SetLogLevel(LogLevelToAstiav(l.Level()))
	astiav.SetLogCallback(LogCallback(l))
}
