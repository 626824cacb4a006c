package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cosmossdk.io/log"

	"github.com/gametrade/zkescrow/internal/funds"
	"github.com/gametrade/zkescrow/modules/attestation"
	escrowkeeper "github.com/gametrade/zkescrow/modules/escrow/keeper"
	escrowtypes "github.com/gametrade/zkescrow/modules/escrow/types"
	resolverkeeper "github.com/gametrade/zkescrow/modules/resolver/keeper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "zkescrowd",
		Short: "Trustless game-trade settlement daemon",
		Long: `zkescrowd runs the trade ledger, attestation verifier and settlement
resolver behind an HTTP API. Proof submission is permissionless; fund
custody is resolved from notary-signed TLS attestations.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to config file")
	flags.String("listen-addr", ":8547", "HTTP listen address")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", "plain", "log format (plain|json)")
	flags.String("notary", "", "trusted notary address")
	flags.String("origin-name", attestation.DefaultOriginName, "expected attestation origin")
	flags.String("authority", "", "ledger and verifier administrator address")
	flags.String("resolver", "", "resolver identity address")
	flags.Uint32("stake-percent", 0, "seller stake percent (0-100)")

	cobra.CheckErr(v.BindPFlags(flags))
	v.SetEnvPrefix("zkescrowd")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cmd.PreRunE = func(*cobra.Command, []string) error {
		if cfgFile := v.GetString("config"); cfgFile != "" {
			v.SetConfigFile(cfgFile)
			return v.ReadInConfig()
		}
		return nil
	}

	return cmd
}

func run(ctx context.Context, cfg Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	authority := common.HexToAddress(cfg.Authority)
	resolverID := common.HexToAddress(cfg.Resolver)
	clock := escrowtypes.SystemClock{}

	bank := funds.NewLedger(escrowtypes.GetEscrowAddress())

	verifier, err := attestation.NewVerifier(logger, authority, common.HexToAddress(cfg.Notary), cfg.OriginName)
	if err != nil {
		return err
	}

	ledger, err := escrowkeeper.NewKeeper(logger, bank, clock, authority,
		escrowtypes.NewParams(cfg.StakePercent, resolverID))
	if err != nil {
		return err
	}

	resolver := resolverkeeper.NewKeeper(logger, verifier, ledger, clock, resolverID)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(logger, bank, ledger, resolver),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "origin", cfg.OriginName, "notary", verifier.Notary())
		errCh <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(cfg Config) (log.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []log.Option{log.LevelOption(level)}
	if strings.EqualFold(cfg.LogFormat, "json") {
		opts = append(opts, log.OutputJSONOption())
	}

	return log.NewLogger(os.Stderr, opts...), nil
}
