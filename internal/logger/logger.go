// Package logger provides leveled logging for the long-running scanner
// process.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func levelFromString(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

var (
	level = InfoLevel
	std   = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

	labels = map[Level]string{
		DebugLevel: "[DEBUG] ",
		InfoLevel:  "[INFO] ",
		WarnLevel:  "[WARN] ",
		ErrorLevel: "[ERROR] ",
	}
)

// Init configures the package logger. Format "text" adds the caller's file
// and line to each entry.
func Init(lvl string, format string) {
	level = levelFromString(lvl)
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	std = log.New(os.Stderr, "", flags)
}

func logf(l Level, format string, args ...any) {
	if level > l {
		return
	}
	_ = std.Output(3, labels[l]+fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { logf(DebugLevel, format, args...) }

func Info(format string, args ...any) { logf(InfoLevel, format, args...) }

func Warn(format string, args ...any) { logf(WarnLevel, format, args...) }

func Error(format string, args ...any) { logf(ErrorLevel, format, args...) }

// Fatal logs the message and exits the process.
func Fatal(format string, args ...any) {
	_ = std.Output(2, "[FATAL] "+fmt.Sprintf(format, args...))
	os.Exit(1)
}
