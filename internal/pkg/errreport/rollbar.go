// Package errreport forwards server errors and recovered panics to Rollbar.
package errreport

import (
	"net/http"
	"os"

	"github.com/rollbar/rollbar-go"
)

// Config holds the Rollbar settings
type Config struct {
	Token       string
	Environment string
	CodeVersion string
}

var enabled bool

// Init configures the Rollbar client; reporting stays off without a token
func Init(cfg Config) {
	enabled = cfg.Token != ""
	rollbar.SetEnabled(enabled)
	if !enabled {
		return
	}
	rollbar.SetToken(cfg.Token)
	rollbar.SetEnvironment(cfg.Environment)
	if host, err := os.Hostname(); err == nil {
		rollbar.SetServerHost(host)
	}
	if cfg.CodeVersion != "" {
		rollbar.SetCodeVersion(cfg.CodeVersion)
	}
}

// Enabled reports whether errors are being forwarded
func Enabled() bool { return enabled }

// Error reports err with the request that produced it
func Error(r *http.Request, err error, extras map[string]interface{}) {
	if !enabled || err == nil {
		return
	}
	if r != nil {
		rollbar.RequestErrorWithExtras(rollbar.ERR, r, err, extras)
		return
	}
	rollbar.ErrorWithExtras(rollbar.ERR, err, extras)
}

// Critical reports a recovered panic
func Critical(r *http.Request, err error) {
	if !enabled || err == nil {
		return
	}
	rollbar.RequestError(rollbar.CRIT, r, err)
}

// Close flushes pending reports
func Close() {
	if enabled {
		rollbar.Close()
	}
}
