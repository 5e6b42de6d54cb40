package cli

import (
	"fmt"
	"strings"
	"time"

	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"

	"github.com/spf13/cobra"
)

// AccountView is the CLI rendering of an account snapshot.
type AccountView struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	Version       int64  `json:"version"`
}

func (v AccountView) String() string {
	return fmt.Sprintf("%s  balance=%s  version=%d", v.AccountNumber, v.Balance, v.Version)
}

func toAccountView(a *domain.Account) AccountView {
	return AccountView{AccountNumber: a.AccountNumber, Balance: a.BalanceString(), Version: a.Version}
}

// HistoryView is one page of an account's transaction log.
type HistoryView struct {
	AccountNumber string            `json:"account_number"`
	Total         int64             `json:"total"`
	Page          int               `json:"page"`
	Items         []TransactionView `json:"items"`
}

// TransactionView is one transaction record.
type TransactionView struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	RecordedAt string `json:"recorded_at"`
}

func (v HistoryView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %d transaction(s), page %d", v.AccountNumber, v.Total, v.Page)
	for _, t := range v.Items {
		fmt.Fprintf(&b, "\n  %s  %-6s  %12s  %s", t.RecordedAt, t.Type, t.Amount, t.ID)
	}
	return b.String()
}

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions, factory ServiceFactory) *cobra.Command {
	var balance string

	cmd := &cobra.Command{
		Use:   "open <account-number>",
		Short: "Open an account",
		Example: `  ledgerctl open 12345
  ledgerctl open 12345 --balance 1000.00`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openServices(cmd, rootOpts, factory)
			if err != nil {
				return err
			}
			defer svcs.Close()

			out := formatter(cmd, rootOpts)
			account, err := svcs.Accounts.OpenAccount(cmd.Context(), args[0], balance)
			if err != nil {
				return out.Fail("open", err)
			}
			return out.Success(toAccountView(account))
		},
	}

	cmd.Flags().StringVar(&balance, "balance", "", "opening balance, e.g. 1000.00")
	return cmd
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions, factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <account-number> KIND:AMOUNT...",
		Short: "Apply an ordered batch of operations, all or nothing",
		Long: `Apply DEBIT and CREDIT operations in the order given. Either every
operation is applied or none is.`,
		Example:       `  ledgerctl apply 12345 CREDIT:50.00 DEBIT:100.00`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := parseOperations(args[1:])
			if err != nil {
				return err
			}

			svcs, err := openServices(cmd, rootOpts, factory)
			if err != nil {
				return err
			}
			defer svcs.Close()

			out := formatter(cmd, rootOpts)
			account, err := svcs.Accounts.ApplyBatch(cmd.Context(), args[0], ops)
			if err != nil {
				return out.Fail("apply", err)
			}
			return out.Success(toAccountView(account))
		},
	}
}

// parseOperations reads KIND:AMOUNT arguments. Kind and amount are checked by
// the ledger itself.
func parseOperations(args []string) ([]domain.Operation, error) {
	ops := make([]domain.Operation, 0, len(args))
	for _, arg := range args {
		kind, amount, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("operation %q: want KIND:AMOUNT", arg))
		}
		ops = append(ops, domain.Operation{Kind: strings.ToUpper(kind), Amount: amount})
	}
	return ops, nil
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions, factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:           "balance <account-number>",
		Short:         "Show the current balance",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openServices(cmd, rootOpts, factory)
			if err != nil {
				return err
			}
			defer svcs.Close()

			out := formatter(cmd, rootOpts)
			account, err := svcs.Accounts.GetBalance(cmd.Context(), args[0])
			if err != nil {
				return out.Fail("balance", err)
			}
			return out.Success(toAccountView(account))
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions, factory ServiceFactory) *cobra.Command {
	var (
		page     int
		pageSize int
		kind     string
	)

	cmd := &cobra.Command{
		Use:           "history <account-number>",
		Short:         "List recorded transactions, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ports.TransactionFilter{Page: page, PageSize: pageSize}
			if kind != "" {
				k, err := domain.ParseKind(strings.ToUpper(kind))
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --type", err)
				}
				filter.Kind = &k
			}

			svcs, err := openServices(cmd, rootOpts, factory)
			if err != nil {
				return err
			}
			defer svcs.Close()

			out := formatter(cmd, rootOpts)
			records, total, err := svcs.Accounts.ListTransactions(cmd.Context(), args[0], filter)
			if err != nil {
				return out.Fail("history", err)
			}

			view := HistoryView{AccountNumber: args[0], Total: total, Page: page, Items: make([]TransactionView, len(records))}
			for i, r := range records {
				view.Items[i] = TransactionView{
					ID:         r.ID.String(),
					Type:       string(r.Kind),
					Amount:     domain.FormatAmount(r.Amount),
					RecordedAt: r.RecordedAt.UTC().Format(time.RFC3339),
				}
			}
			return out.Success(view)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "records per page (max 100)")
	cmd.Flags().StringVar(&kind, "type", "", "only DEBIT or CREDIT records")
	return cmd
}
