package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volunteerhub/config"
	"volunteerhub/logging"
)

// version is stamped at build time with -ldflags "-X volunteerhub/command.version=...".
var version = "dev"

// app holds what every subcommand needs once flags are parsed.
type app struct {
	envFile string
	cfg     *config.Config
	log     *zap.Logger
}

func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

// NewRootCmd builds the volunteerhub command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "volunteerhub",
		Short:         "VolunteerHub - coordinate volunteer events",
		Long:          `API server and maintenance commands for volunteer events, signups, feedback and help requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment")

	root.AddCommand(serveCmd(a))
	root.AddCommand(usersCmd(a))
	root.AddCommand(formsCmd(a))
	return root
}

// Execute runs the command tree until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
