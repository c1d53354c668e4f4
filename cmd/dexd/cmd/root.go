package cmd

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/latticefi/spotdex/x/dex/feed"
	"github.com/latticefi/spotdex/x/dex/keeper"
	"github.com/latticefi/spotdex/x/dex/tokens"
	"github.com/latticefi/spotdex/x/dex/types"
)

// envPrefix is the Viper environment variable prefix, SPOTDEX_FOO for
// a --foo flag.
const envPrefix = "SPOTDEX"

// tokenHash derives a stable demo token identifier from a
// human-readable symbol, standing in for the real token registry
// spec.md places out of scope.
func tokenHash(symbol string) types.H {
	sum := sha256.Sum256([]byte("dexd-token:" + symbol))
	return types.H(sum)
}

// NewRootCmd builds the dexd root command and its subcommands.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "dexd",
		Short: "spotdex dispatch-shell demonstration CLI",
		Long: `dexd exercises the spotdex matching core's dispatch shell
(x/dex/keeper) against an in-memory token ledger. Each invocation
starts from empty state: there is no persistence layer, matching the
spec's non-goal on blockchain storage and consensus concerns.`,
	}

	root.AddCommand(newCreatePairCmd(v))
	root.AddCommand(newPlaceOrderCmd(v))
	root.AddCommand(newServeFeedCmd(v))
	return root
}

func newLogger(v *viper.Viper) log.Logger {
	if v.GetBool("verbose") {
		return log.NewLogger(os.Stderr)
	}
	return log.NewNopLogger()
}

func newCreatePairCmd(v *viper.Viper) *cobra.Command {
	var creator, base, quote string

	c := &cobra.Command{
		Use:   "create-pair",
		Short: "Register a trade pair between two demo tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := tokens.NewMemory()
			baseHash, quoteHash := tokenHash(base), tokenHash(quote)
			tok.RegisterToken(baseHash, types.A(creator))
			tok.RegisterToken(quoteHash, types.A(creator))

			k := keeper.New(tok, types.NopEventSink{}, newLogger(v))
			pairHash, err := k.CreateTradePair(keeper.Context{Logger: newLogger(v)}, types.A(creator), baseHash, quoteHash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pair %s/%s created: %s\n", base, quote, pairHash)
			return nil
		},
	}

	c.Flags().StringVar(&creator, "creator", "", "account creating the pair")
	c.Flags().StringVar(&base, "base", "", "base token symbol")
	c.Flags().StringVar(&quote, "quote", "", "quote token symbol")
	_ = c.MarkFlagRequired("creator")
	_ = c.MarkFlagRequired("base")
	_ = c.MarkFlagRequired("quote")
	bindFlags(v, c)
	return c
}

func newPlaceOrderCmd(v *viper.Viper) *cobra.Command {
	var owner, base, quote, side string
	var price uint64
	var sellAmount uint64

	c := &cobra.Command{
		Use:   "place-order",
		Short: "Create the pair if needed, mint the give-side balance, and place a limit order",
		RunE: func(cmd *cobra.Command, args []string) error {
			otype := types.Buy
			if side == "sell" {
				otype = types.Sell
			} else if side != "buy" {
				return fmt.Errorf("--side must be buy or sell, got %q", side)
			}

			tok := tokens.NewMemory()
			baseHash, quoteHash := tokenHash(base), tokenHash(quote)
			tok.RegisterToken(baseHash, types.A(owner))
			tok.RegisterToken(quoteHash, types.A(owner))

			k := keeper.New(tok, types.NopEventSink{}, newLogger(v))
			ctx := keeper.Context{Logger: newLogger(v)}
			if _, err := k.CreateTradePair(ctx, types.A(owner), baseHash, quoteHash); err != nil {
				return err
			}

			giveToken := baseHash
			if otype == types.Sell {
				giveToken = quoteHash
			}
			tok.Mint(types.A(owner), giveToken, types.NewQFromUint64(sellAmount))

			orderHash, filled, err := k.CreateLimitOrder(ctx, types.A(owner), baseHash, quoteHash, otype, types.P(price), types.NewQFromUint64(sellAmount))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s placed, filled=%v\n", orderHash, filled)
			return nil
		},
	}

	c.Flags().StringVar(&owner, "owner", "", "account placing the order")
	c.Flags().StringVar(&base, "base", "", "base token symbol")
	c.Flags().StringVar(&quote, "quote", "", "quote token symbol")
	c.Flags().StringVar(&side, "side", "buy", "buy or sell")
	c.Flags().Uint64Var(&price, "price", 0, "price, scaled by the fixed-point price factor")
	c.Flags().Uint64Var(&sellAmount, "amount", 0, "sell-side amount to offer")
	_ = c.MarkFlagRequired("owner")
	_ = c.MarkFlagRequired("base")
	_ = c.MarkFlagRequired("quote")
	_ = c.MarkFlagRequired("price")
	_ = c.MarkFlagRequired("amount")
	bindFlags(v, c)
	return c
}

func newServeFeedCmd(v *viper.Viper) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve-feed",
		Short: "Serve the read-only WebSocket market-data feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := feed.NewHub()
			server := feed.NewServer(addr, hub)

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sig:
				return server.Shutdown(context.Background())
			}
		},
	}

	c.Flags().StringVar(&addr, "addr", ":8765", "listen address for the WebSocket feed")
	bindFlags(v, c)
	return c
}

// bindFlags wires c's flags to v so SPOTDEX_-prefixed env vars can
// supply any of them that weren't passed explicitly.
func bindFlags(v *viper.Viper, c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if !f.Changed && v.IsSet(f.Name) {
			_ = c.Flags().Set(f.Name, v.GetString(f.Name))
		}
	})
}
