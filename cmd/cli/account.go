package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/infrastructure/store"
)

var accountCurrency string //nolint:gochecknoglobals

var accountCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "account",
	Short: "Inspect and mutate balances directly against the configured store.",
}

var accountRegisterCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "register <account>",
	Short: "Register an account with a zero balance.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l ledgerService) (any, error) {
			return l.Register(ctx, args[0], accountCurrency)
		})
	},
}

var accountShowCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "show <account>",
	Short: "Print an account's free and locked balance.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l ledgerService) (any, error) {
			return l.Balance(ctx, args[0], accountCurrency)
		})
	},
}

var accountApplyCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "apply <operation> <account> <value>",
	Short: "Apply add, force_add, lock, unlock, remove or force_remove.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := entity.ParseOperation(args[0])
		if err != nil {
			return err
		}
		value, err := entity.ParseAmountString(args[2])
		if err != nil {
			return err
		}
		return withLedger(cmd, func(ctx context.Context, l ledgerService) (any, error) {
			return l.Apply(ctx, op, args[1], accountCurrency, value)
		})
	},
}

// withLedger opens the configured store, runs fn and prints its result as JSON.
// Logs go to stderr so stdout stays machine readable.
func withLedger(cmd *cobra.Command, fn func(context.Context, ledgerService) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := bootstrap(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	balanceStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open balance store: %w", err)
	}
	defer balanceStore.Close()

	l, err := newLedger(cfg.Ledger.Mode, balanceStore, log, nil)
	if err != nil {
		return err
	}

	result, err := fn(ctx, l)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() { //nolint:gochecknoinits
	accountCmd.PersistentFlags().StringVar(&accountCurrency, "currency", "", "currency code (multi-currency mode only)")
	accountCmd.AddCommand(accountRegisterCmd, accountShowCmd, accountApplyCmd)
	rootCmd.AddCommand(accountCmd)
}
