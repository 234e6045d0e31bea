package logging

import (
	"net/http"

	"github.com/rollbar/rollbar-go"
)

type RollbarOptions struct {
	Token       string
	Environment string
	Host        string
	CodeVersion string
}

// ConfigureRollbar sets up the process wide rollbar client. Reporting stays off
// without a token.
func ConfigureRollbar(o RollbarOptions) {
	rollbar.SetToken(o.Token)
	rollbar.SetEnvironment(o.Environment)
	rollbar.SetServerHost(o.Host)
	rollbar.SetCodeVersion(o.CodeVersion)
	rollbar.SetEnabled(o.Token != "")
}

// ReportError sends an unexpected request error to rollbar.
func ReportError(r *http.Request, err error, email string) {
	extras := map[string]interface{}{"path": r.URL.Path}
	if email != "" {
		extras["email"] = email
	}
	rollbar.Error(r, err, extras)
}

// ReportPanic sends a recovered panic to rollbar as critical.
func ReportPanic(r *http.Request, err error) {
	rollbar.Critical(r, err)
}

// Flush waits for queued reports to be delivered.
func Flush() {
	rollbar.Wait()
}
