package log

import (
	"context"
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextLoggerKey struct{}

var defaultEntry = logrus.NewEntry(logrus.StandardLogger())

// Setup configures the standard logger used by sepctl commands.
// With debug enabled the caller of every record is reported.
func Setup(out io.Writer, debug bool) {
	logrus.SetOutput(out)
	formatter := &logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	}
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetReportCaller(false)
	if debug {
		formatter.CallerPrettyfier = CallerPrettyfier
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetReportCaller(true)
	}
	logrus.SetFormatter(formatter)
}

// WithFields returns a context whose logger carries the fields in addition
// to the fields of the logger already stored in ctx.
func WithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	return context.WithValue(ctx, contextLoggerKey{}, GetLogger(ctx).WithFields(fields))
}

// WithLogger stores logger in the returned context.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextLoggerKey{}, logger)
}

// GetLogger returns the logger stored in ctx or the standard one.
func GetLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(contextLoggerKey{}).(*logrus.Entry); ok {
		return logger
	}
	return defaultEntry
}

// Fields returns fields of the logger stored in ctx.
func Fields(ctx context.Context) map[string]interface{} {
	return GetLogger(ctx).Data
}

// CallerPrettyfier shortens caller info to "pkg.Func" and "dir/file.go:line".
func CallerPrettyfier(f *runtime.Frame) (string, string) {
	dir, filename := path.Split(f.File)
	_, dir = path.Split(strings.TrimSuffix(dir, "/"))
	filename = fmt.Sprintf("%s:%d", path.Join(dir, filename), f.Line)

	fn := f.Function
	if idx := strings.LastIndex(fn, "/"); idx >= 0 {
		fn = fn[idx+1:]
	}
	return fn, filename
}
