// internal/sniper/coordinator.go
package sniper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/config"
	"github.com/Deezzir/SolanaBot-sub000/internal/curve"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/ui"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

const (
	// startupTimeout bounds the wait for all workers to report started.
	startupTimeout = 15 * time.Second
	// feeReserve is extra lamports each wallet must hold beyond the minimum
	// buy, covering transaction fees and rent.
	feeReserve = 5_000_000
)

// ErrStartup marks failures that abort the run before any trading begins.
var ErrStartup = errors.New("startup failed")

// Coordinator owns the worker pool, the live meta broadcast, and the command
// relay for one snipe session.
type Coordinator struct {
	cfg           *config.Store
	client        *chain.Client
	venue         trader.Trader
	wallets       []*wallet.Wallet
	detectProgram solana.PublicKey
	monitor       *ui.Monitor
	logger        *zap.Logger

	workers      []*Worker
	stopped      atomic.Bool
	detectCancel context.CancelFunc
	poke         chan struct{}

	mu       sync.Mutex
	lastMeta *trader.MintMeta
}

// NewCoordinator wires a session together. detectProgram is the launch
// program whose log feed announces token creations.
func NewCoordinator(
	cfg *config.Store,
	client *chain.Client,
	venue trader.Trader,
	wallets []*wallet.Wallet,
	detectProgram solana.PublicKey,
	monitor *ui.Monitor,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		cfg:           cfg,
		client:        client,
		venue:         venue,
		wallets:       wallets,
		detectProgram: detectProgram,
		monitor:       monitor,
		logger:        logger.Named("coordinator"),
		poke:          make(chan struct{}, 1),
	}
}

// Run executes one full snipe session: balance checks, token resolution,
// worker startup, live updates, and settlement. It returns when every worker
// has stopped.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.checkBalances(ctx); err != nil {
		return err
	}

	meta, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	// Buffered so a worker's startup report never blocks: if awaitStarted
	// times out and stops receiving, stragglers must still see CmdStop.
	started := make(chan int, len(c.wallets))
	results := make(chan error, len(c.wallets))
	snapshot := c.cfg.Snapshot()

	workers := make([]*Worker, 0, len(c.wallets))
	for i, w := range c.wallets {
		workers = append(workers, newWorker(i, w, c.venue, c.client, snapshot, c.monitor, c.logger))
	}
	// Published once, before the command relay can observe the pool.
	c.mu.Lock()
	c.workers = workers
	c.mu.Unlock()

	for _, worker := range workers {
		go func(worker *Worker) {
			results <- worker.Run(ctx, started)
		}(worker)
	}

	// No worker may receive a buy until every worker has reported started.
	if err := c.awaitStarted(ctx, len(workers), started, results); err != nil {
		c.Stop()
		c.drain(results, len(workers))
		return err
	}
	c.logger.Info("all workers started", zap.Int("count", len(workers)))

	c.publish(meta)
	c.Broadcast(Command{Kind: CmdBuy, WorkerID: BroadcastID})

	updateCtx, updateCancel := context.WithCancel(ctx)
	var updates sync.WaitGroup
	updates.Add(1)
	go func() {
		defer updates.Done()
		c.updateLoop(updateCtx, meta)
	}()
	go c.watchAccount(updateCtx, meta)

	// Join-all-settled: a failed worker must not abandon the others mid-trade.
	var failures []error
	for range workers {
		if err := <-results; err != nil {
			failures = append(failures, err)
		}
	}
	updateCancel()
	updates.Wait()

	if len(failures) > 0 {
		return fmt.Errorf("%d worker(s) failed: %w", len(failures), errors.Join(failures...))
	}
	c.logger.Info("session complete")
	return nil
}

// checkBalances verifies every wallet can fund at least one minimum buy, in
// parallel. Any underfunded wallet aborts the whole startup.
func (c *Coordinator) checkBalances(ctx context.Context) error {
	required := lamports(c.cfg.Snapshot().MinBuy) + feeReserve

	var (
		mu          sync.Mutex
		underfunded []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range c.wallets {
		g.Go(func() error {
			balance, err := c.client.GetBalance(gctx, w.PublicKey)
			if err != nil {
				return fmt.Errorf("balance check for %s: %w", w.Name, err)
			}
			if balance < required {
				mu.Lock()
				underfunded = append(underfunded, fmt.Sprintf("%s (%s)", w.Name, w.PublicKey))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	if len(underfunded) > 0 {
		return fmt.Errorf("%w: underfunded wallets: %s", ErrStartup, strings.Join(underfunded, ", "))
	}
	return nil
}

// resolveToken returns the initial meta: a pre-supplied mint is used
// directly, otherwise the detector races the log feed against cancellation.
func (c *Coordinator) resolveToken(ctx context.Context) (*trader.MintMeta, error) {
	snapshot := c.cfg.Snapshot()

	var mint solana.PublicKey
	var name, symbol string
	if snapshot.Mint != "" {
		parsed, err := solana.PublicKeyFromBase58(snapshot.Mint)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid mint %q: %v", ErrStartup, snapshot.Mint, err)
		}
		mint = parsed
	} else {
		detectCtx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.detectCancel = cancel
		c.mu.Unlock()
		defer cancel()

		detector := NewDetector(snapshot.WebSocketURL, c.detectProgram, c.logger)
		event, err := detector.WaitForToken(detectCtx, snapshot.TokenName, snapshot.TokenSymbol)
		if err != nil {
			return nil, fmt.Errorf("token detection: %w", err)
		}
		mint = event.Mint
		name, symbol = event.Name, event.Symbol
	}

	meta := c.venue.DefaultMeta(mint)
	meta.Name, meta.Symbol = name, symbol
	if meta.Name == "" {
		tokenMeta := c.client.GetTokenMeta(ctx, mint)
		meta.Name, meta.Symbol = tokenMeta.Name, tokenMeta.Symbol
	}

	// Best effort: a just-created curve may not be readable yet, in which
	// case the seeded defaults stand until the first refresh lands.
	if updated, err := c.refresh(ctx, meta); err == nil {
		meta = updated
	} else {
		c.logger.Debug("initial meta refresh failed, trading on defaults", zap.Error(err))
	}
	return meta, nil
}

func (c *Coordinator) awaitStarted(ctx context.Context, n int, started <-chan int, results <-chan error) error {
	deadline := time.NewTimer(startupTimeout)
	defer deadline.Stop()

	for remaining := n; remaining > 0; remaining-- {
		select {
		case <-started:
		case err := <-results:
			return fmt.Errorf("%w: worker exited during startup: %v", ErrStartup, err)
		case <-deadline.C:
			return fmt.Errorf("%w: %d worker(s) did not start within %s", ErrStartup, remaining, startupTimeout)
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrStartup, ctx.Err())
		}
	}
	return nil
}

func (c *Coordinator) drain(results <-chan error, n int) {
	for i := 0; i < n; i++ {
		<-results
	}
}

// refresh re-reads chain state and recomputes the derived metrics.
func (c *Coordinator) refresh(ctx context.Context, meta *trader.MintMeta) (*trader.MintMeta, error) {
	updated, err := c.venue.UpdateMeta(ctx, meta)
	if err != nil {
		return nil, err
	}
	return updated.WithMarketCaps(c.cfg.Snapshot().SolPriceUSD)
}

// updateLoop polls chain state on a fixed interval, with the account
// subscription poking it for immediate refreshes. Both paths funnel into
// publish.
func (c *Coordinator) updateLoop(ctx context.Context, meta *trader.MintMeta) {
	interval := c.cfg.Snapshot().MonitorDelay
	if interval <= 0 {
		interval = config.DefaultMonitorDelay
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	current := meta
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.poke:
		}

		updated, err := c.refresh(ctx, current)
		if err != nil {
			c.logger.Debug("meta refresh failed", zap.Error(err))
			continue
		}
		current = updated
		c.publish(current)
	}
}

// watchAccount subscribes to the traded account and pokes the update loop on
// every change. Polling remains the fallback when the subscription drops.
func (c *Coordinator) watchAccount(ctx context.Context, meta *trader.MintMeta) {
	watch := meta.Curve
	if watch.IsZero() {
		watch = meta.Pool
	}
	if watch.IsZero() {
		return
	}

	client, err := ws.Connect(ctx, c.cfg.Snapshot().WebSocketURL)
	if err != nil {
		c.logger.Warn("account subscription unavailable, polling only", zap.Error(err))
		return
	}
	defer client.Close()

	sub, err := client.AccountSubscribe(watch, rpc.CommitmentProcessed)
	if err != nil {
		c.logger.Warn("account subscription failed, polling only", zap.Error(err))
		return
	}
	defer sub.Unsubscribe()

	for {
		if _, err := sub.Recv(ctx); err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("account subscription closed", zap.Error(err))
			}
			return
		}
		select {
		case c.poke <- struct{}{}:
		default:
		}
	}
}

// publish is the single funnel for meta updates: it logs the migration flip
// exactly once, notifies the display sink, and rebroadcasts to every worker.
func (c *Coordinator) publish(meta *trader.MintMeta) {
	c.mu.Lock()
	migrated := c.lastMeta != nil && !c.lastMeta.Complete && meta.Complete
	c.lastMeta = meta
	workers := c.workers
	c.mu.Unlock()

	if migrated {
		c.logger.Info("liquidity migrated to AMM",
			zap.String("mint", meta.Mint.String()),
			zap.String("pool", meta.Pool.String()))
		c.monitor.Migration(meta.Symbol)
	}

	if price, err := curve.PriceInSol(meta.Reserves(), meta.Decimals); err == nil {
		c.monitor.PriceUpdate(meta.Symbol, price, meta.MarketCapUSD, meta.Complete)
	}

	for _, worker := range workers {
		worker.Publish(meta)
	}
}

// pool returns the worker slice published by Run. The slice is assigned once
// and never mutated afterwards, so holding only the read is safe.
func (c *Coordinator) pool() []*Worker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workers
}

// Broadcast routes a command to its target worker, or to all of them.
func (c *Coordinator) Broadcast(cmd Command) {
	workers := c.pool()
	if cmd.WorkerID != BroadcastID {
		if cmd.WorkerID < 0 || cmd.WorkerID >= len(workers) {
			c.logger.Warn("command for unknown worker", zap.Int("worker", cmd.WorkerID))
			return
		}
		workers[cmd.WorkerID].Send(cmd)
		return
	}
	for _, worker := range workers {
		worker.Send(cmd)
	}
}

// Command handles one parsed operator command.
func (c *Coordinator) Command(cmd Command) {
	switch cmd.Kind {
	case CmdStop:
		c.Stop()
	case CmdShowConfig:
		snapshot := c.cfg.Snapshot()
		c.logger.Info("current config",
			zap.Float64("spend_limit", snapshot.SpendLimit),
			zap.Float64("min_buy", snapshot.MinBuy),
			zap.Float64("max_buy", snapshot.MaxBuy),
			zap.Bool("buy_once", snapshot.BuyOnce),
			zap.Float64("mcap_threshold", snapshot.McapThreshold),
			zap.Float64("buy_slippage", snapshot.BuySlippage),
			zap.Float64("sell_slippage", snapshot.SellSlippage),
			zap.String("priority", snapshot.Priority),
			zap.Duration("trade_interval", snapshot.TradeInterval))
	case CmdConfig:
		// Validate against the shared config first; only accepted patches are
		// rebroadcast so every worker's copy stays consistent.
		if err := c.cfg.Patch(cmd.Key, cmd.Value); err != nil {
			c.logger.Warn("config patch rejected", zap.String("key", cmd.Key), zap.Error(err))
			return
		}
		c.Broadcast(cmd)
	default:
		c.Broadcast(cmd)
	}
}

// Stop ends the session: idempotent, a second call only logs. It cancels an
// active detection wait and tells every worker to stop; in-flight trade
// batches are left to finish.
func (c *Coordinator) Stop() {
	if !c.stopped.CompareAndSwap(false, true) {
		c.logger.Info("already stopping")
		return
	}
	c.logger.Info("stopping session")

	c.mu.Lock()
	cancel := c.detectCancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	for _, worker := range c.pool() {
		worker.Send(Command{Kind: CmdStop, WorkerID: BroadcastID})
	}
}
