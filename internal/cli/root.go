package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"account-balance-service/config"
	"account-balance-service/internal/app"
	"account-balance-service/internal/core/ports"
	"account-balance-service/pkg/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Services is what a command needs from the running ledger.
type Services struct {
	Accounts ports.AccountService
	Tokens   ports.TokenService // nil when auth.jwt_secret is unset
	Close    func()
}

// ServiceFactory opens the ledger for one command invocation.
type ServiceFactory func(ctx context.Context, opts *RootOptions) (*Services, error)

// NewRootCommand creates the root command for ledgerctl. A nil factory
// uses the configured store.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	if factory == nil {
		factory = ConfiguredServices(os.Stderr)
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "ledgerctl - operate account balances",
		Long:  "Open accounts, apply DEBIT/CREDIT batches and inspect balances directly against the configured record store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to config file (default ./config.yaml)")

	cmd.AddCommand(NewOpenCommand(opts, factory))
	cmd.AddCommand(NewApplyCommand(opts, factory))
	cmd.AddCommand(NewBalanceCommand(opts, factory))
	cmd.AddCommand(NewHistoryCommand(opts, factory))
	cmd.AddCommand(NewTokenCommand(opts, factory))

	return cmd
}

// ConfiguredServices loads config and builds the ledger the API would use.
// Logs go to logOut so they never mix with command output.
func ConfiguredServices(logOut io.Writer) ServiceFactory {
	return func(ctx context.Context, opts *RootOptions) (*Services, error) {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return nil, err
		}

		level := "warn"
		if opts.Verbose {
			level = "debug"
		}
		a, err := app.New(ctx, cfg, logger.NewWithWriter(level, logOut))
		if err != nil {
			return nil, err
		}
		return &Services{Accounts: a.Accounts(), Tokens: a.Tokens(), Close: a.Close}, nil
	}
}

func openServices(cmd *cobra.Command, opts *RootOptions, factory ServiceFactory) (*Services, error) {
	svcs, err := factory(cmd.Context(), opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	if svcs.Close == nil {
		svcs.Close = func() {}
	}
	return svcs, nil
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
