// Package log emits one JSON line per application action. Handlers pass the
// fiber context so request id, method, path and status travel with the entry.
package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	l.SetOutput(os.Stdout)
	return l
}

// Setup applies the configured output and level. Called once from main.
func Setup(out io.Writer, level string) {
	if out != nil {
		logger.SetOutput(out)
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
}

func fieldsFor(c *fiber.Ctx, action string, extra map[string]any) logrus.Fields {
	f := logrus.Fields{"action": action}
	if c != nil {
		f["ip"] = c.IP()
		f["method"] = c.Method()
		f["path"] = c.Path()
		f["status"] = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			f["req_id"] = rid
		}
	}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	logger.WithFields(fieldsFor(c, action, fields)).Info(action)
}

// Audit records a state-changing business action (order placed, stock moved).
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	logger.WithFields(fieldsFor(c, action, fields)).WithField("audit", true).Info(action)
}

// Security records denied access and validation abuse.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	logger.WithFields(fieldsFor(c, action, fields)).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry := logger.WithFields(fieldsFor(c, action, fields))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(action)
}
