package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/bundle"
)

var expiresFlag string

var addCmd = &cobra.Command{
	Use:   "add <bundle>",
	Short: "Buy a bundle of tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []wallet.AddOption
		if expiresFlag != "" {
			t, err := time.Parse(time.RFC3339, expiresFlag)
			if err != nil {
				return fmt.Errorf("invalid --expires %q: %w", expiresFlag, err)
			}
			opts = append(opts, wallet.ExpiringAt(t))
		}

		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Stop()

		batch, err := w.AddBundle(cmd.Context(), bundle.Key(args[0]), opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d tokens (%s), expiring %s\n",
			batch.Count, batch.Bundle, formatInstant(batch.ExpiresAt))
		return nil
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume [count]",
	Short: "Consume tokens, soonest-expiring first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := parseCount(args)
		if err != nil {
			return err
		}

		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Stop()

		ok, err := w.Consume(cmd.Context(), count)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("not enough tokens to consume %d", count)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Consumed %d tokens\n", count)
		return nil
	},
}

var canConsumeCmd = &cobra.Command{
	Use:   "can-consume [count]",
	Short: "Report whether tokens could be consumed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := parseCount(args)
		if err != nil {
			return err
		}

		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Stop()

		ok, err := w.CanConsume(cmd.Context(), count)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(ok))
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the usable token balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Stop()

		bal, err := w.Balance(cmd.Context())
		if err != nil {
			return err
		}
		latest, ok, err := w.LatestExpiration(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Balance: %d tokens\n", bal.Count)
		if bal.ClosestExpiration != nil {
			fmt.Fprintf(out, "Closest expiration: %s\n", formatInstant(*bal.ClosestExpiration))
		} else {
			fmt.Fprintln(out, "Closest expiration: none")
		}
		if ok {
			fmt.Fprintf(out, "Latest expiration: %s\n", formatInstant(latest))
		} else {
			fmt.Fprintln(out, "Latest expiration: none")
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all purchases and consumption",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Stop()

		if err := w.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wallet %s reset\n", w.WalletID())
		return nil
	},
}

var bundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "List the bundles that can be bought",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tTOKENS\tVALIDITY")
		for _, d := range catalog.List() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.Name, d.Tokens, formatValidity(d.Validity))
		}
		return tw.Flush()
	},
}

func init() {
	addCmd.Flags().StringVar(&expiresFlag, "expires", "", "expiration instant (RFC3339) overriding the bundle's validity")
}

func parseCount(args []string) (int64, error) {
	if len(args) == 0 {
		return 1, nil
	}
	count, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", args[0], err)
	}
	if count <= 0 {
		return 0, errors.New("count must be positive")
	}
	return count, nil
}

func formatInstant(t time.Time) string {
	return t.Local().Format(displayLayout)
}

func formatValidity(v bundle.Validity) string {
	var parts []string
	if v.Years != 0 {
		parts = append(parts, fmt.Sprintf("%dy", v.Years))
	}
	if v.Months != 0 {
		parts = append(parts, fmt.Sprintf("%dmo", v.Months))
	}
	if v.Days != 0 {
		parts = append(parts, fmt.Sprintf("%dd", v.Days))
	}
	return strings.Join(parts, " ")
}
