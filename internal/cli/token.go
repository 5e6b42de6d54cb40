package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// TokenView is a freshly minted API token.
type TokenView struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (v TokenView) String() string {
	return v.Token
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions, factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:           "token <subject>",
		Short:         "Mint a bearer token for the HTTP API",
		Long:          "Mint a bearer token signed with auth.jwt_secret. Fails when auth is not configured.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openServices(cmd, rootOpts, factory)
			if err != nil {
				return err
			}
			defer svcs.Close()

			if svcs.Tokens == nil {
				return NewExitError(ExitCommandError, "auth is disabled: set auth.jwt_secret")
			}

			token, expiresAt, err := svcs.Tokens.Generate(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to mint token", err)
			}
			return formatter(cmd, rootOpts).Success(TokenView{Token: token, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)})
		},
	}
}
