// cmd/bot/main.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/config"
	"github.com/Deezzir/SolanaBot-sub000/internal/logger"
	"github.com/Deezzir/SolanaBot-sub000/internal/sniper"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader/launchlab"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader/pumpfun"
	"github.com/Deezzir/SolanaBot-sub000/internal/ui"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.json", "path to config file")
	presetsPath := flag.String("presets", "", "optional path to YAML presets file")
	presetName := flag.String("preset", "", "preset to apply on top of the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *presetName != "" {
		if *presetsPath == "" {
			return fmt.Errorf("-preset requires -presets")
		}
		presets, err := config.LoadPresets(*presetsPath)
		if err != nil {
			return err
		}
		if err := cfg.ApplyPreset(presets, *presetName); err != nil {
			return err
		}
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     50,
		MaxBackups:  3,
		MaxAge:      14,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	wallets, err := wallet.Load(cfg.WalletsFile)
	if err != nil {
		return fmt.Errorf("wallets: %w", err)
	}
	if len(wallets) > cfg.Workers {
		wallets = wallets[:cfg.Workers]
	}
	log.Info("wallets loaded", zap.Int("count", len(wallets)))

	client := chain.NewClient(cfg.RPCList, cfg.WebSocketURL, log.Logger)

	relay := cfg.RelayEndpoint
	if relay == "" && cfg.ProtectionTip > 0 {
		relay = chain.DefaultBlockEngine
	}
	submitter := chain.NewSubmitter(client, relay, log.Logger)

	venue, err := trader.New(cfg.Venue, trader.Deps{
		Client:    client,
		Submitter: submitter,
		Logger:    log.Logger,
	})
	if err != nil {
		return err
	}

	detectProgram, err := detectProgramFor(cfg.Venue)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor := ui.NewMonitor()
	coordinator := sniper.NewCoordinator(config.NewStore(cfg), client, venue, wallets, detectProgram, monitor, log.Logger)

	go commandLoop(coordinator, log.Logger)

	log.Info("snipe session starting",
		zap.String("venue", venue.Name()),
		zap.Int("workers", len(wallets)))
	return coordinator.Run(ctx)
}

func detectProgramFor(venueName string) (solana.PublicKey, error) {
	switch venueName {
	case pumpfun.VenueName:
		return pumpfun.ProgramID, nil
	case launchlab.VenueName:
		return launchlab.ProgramID, nil
	default:
		return solana.PublicKey{}, fmt.Errorf("no detection program for venue %q", venueName)
	}
}

// commandLoop reads operator commands from stdin until EOF.
func commandLoop(coordinator *sniper.Coordinator, log *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cmd, err := sniper.ParseCommand(line)
		if err != nil {
			log.Warn("bad command", zap.String("input", line), zap.Error(err))
			continue
		}
		coordinator.Command(cmd)
	}
}
