package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volunteerhub/connection"
	"volunteerhub/logging"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, _ := os.Hostname()
			logging.ConfigureRollbar(logging.RollbarOptions{
				Token:       a.cfg.RollbarToken,
				Environment: a.cfg.Env,
				Host:        host,
				CodeVersion: version,
			})
			defer logging.Flush()

			a.log.Info("starting volunteerhub",
				zap.String("version", version),
				zap.String("env", a.cfg.Env),
				zap.String("auth", a.cfg.AuthDriver),
				zap.String("mail", a.cfg.MailDriver))

			deps, err := connection.Bootstrap(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer deps.Close()

			return connection.StartServer(cmd.Context(), deps)
		},
	}
}
