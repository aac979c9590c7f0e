// internal/sniper/worker.go
package sniper

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/config"
	"github.com/Deezzir/SolanaBot-sub000/internal/logger"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/ui"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

const (
	// batchSize is how many parallel trade attempts race per round. Launch
	// blocks are contested; single attempts fail more often than not.
	batchSize = 3
	// attemptStagger separates attempt dispatches within a round so they do
	// not compete for the same blockhash window.
	attemptStagger = 200 * time.Millisecond
	// retryInterval paces idle-mode polling and failed sell rounds.
	retryInterval = 2 * time.Second
	// balanceRetries bounds the post-buy balance re-read loop.
	balanceRetries = 5
)

// Worker is one trading agent bound to a single funded wallet. It owns its
// state machine and its copy of the config; the coordinator talks to it only
// through the command and update channels.
type Worker struct {
	id      int
	wallet  *wallet.Wallet
	venue   trader.Trader
	client  *chain.Client
	cfg     config.Config
	monitor *ui.Monitor
	logger  *zap.Logger
	rng     *rand.Rand

	commands chan Command
	updates  chan *trader.MintMeta

	state WorkerState
	meta  *trader.MintMeta
}

func newWorker(
	id int,
	w *wallet.Wallet,
	venue trader.Trader,
	client *chain.Client,
	cfg config.Config,
	monitor *ui.Monitor,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		id:       id,
		wallet:   w,
		venue:    venue,
		client:   client,
		cfg:      cfg,
		monitor:  monitor,
		logger:   logger.With(zap.Int("worker", id), zap.String("wallet", w.Name)),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
		commands: make(chan Command, 8),
		updates:  make(chan *trader.MintMeta, 1),
	}
}

// Send delivers an operator command to this worker.
func (w *Worker) Send(cmd Command) {
	select {
	case w.commands <- cmd:
	default:
		w.logger.Warn("command queue full, dropping", zap.Int("kind", int(cmd.Kind)))
	}
}

// Publish replaces the pending meta snapshot. Workers only ever need the
// newest value, so a stale undelivered snapshot is dropped.
func (w *Worker) Publish(meta *trader.MintMeta) {
	for {
		select {
		case w.updates <- meta:
			return
		default:
			select {
			case <-w.updates:
			default:
			}
		}
	}
}

// Run drives the state machine until stop. It signals readiness on started
// before the first iteration, returns nil on a graceful stop and an error
// only on unrecoverable failure.
func (w *Worker) Run(ctx context.Context, started chan<- int) error {
	w.logger.Info("worker started")
	select {
	case started <- w.id:
	case <-ctx.Done():
		return nil
	}

	for {
		w.drain()
		if ctx.Err() != nil || w.state.Mode == ModeStop {
			w.logger.Info("worker stopped",
				zap.Int("buys", w.state.Buys),
				zap.Int("sells", w.state.Sells),
				zap.Float64("spent_sol", w.state.Spendings))
			return nil
		}
		w.checkSellTrigger()

		switch w.state.Mode {
		case ModeIdle:
			w.wait(ctx, retryInterval)
		case ModeBuy:
			w.stepBuy(ctx)
		case ModeSell:
			w.stepSell(ctx)
		}
	}
}

// drain applies every queued message without blocking.
func (w *Worker) drain() {
	for {
		select {
		case cmd := <-w.commands:
			w.handleCommand(cmd)
		case meta := <-w.updates:
			w.meta = meta
		default:
			return
		}
	}
}

// wait sleeps up to d but wakes early for any message or cancellation, so a
// sell or stop never waits out a buy interval.
func (w *Worker) wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case cmd := <-w.commands:
		w.handleCommand(cmd)
	case meta := <-w.updates:
		w.meta = meta
	case <-timer.C:
	}
}

func (w *Worker) handleCommand(cmd Command) {
	if w.state.Mode == ModeStop {
		return
	}
	switch cmd.Kind {
	case CmdStop:
		w.state.Mode = ModeStop
	case CmdBuy:
		w.state.Mode = ModeBuy
		w.state.BuyAmount = cmd.Amount
	case CmdSell:
		w.state.Mode = ModeSell
		w.state.SellPercent = cmd.Percent
	case CmdConfig:
		if err := w.cfg.Patch(cmd.Key, cmd.Value); err != nil {
			w.logger.Warn("config patch rejected", zap.String("key", cmd.Key), zap.Error(err))
		} else {
			w.logger.Info("config patched", zap.String("key", cmd.Key), zap.String("value", cmd.Value))
		}
	}
}

// checkSellTrigger preempts buying the moment the live market cap crosses the
// configured threshold. Sell takes priority over buy whenever both hold.
func (w *Worker) checkSellTrigger() {
	if w.state.Mode != ModeBuy || w.cfg.McapThreshold <= 0 || w.meta == nil {
		return
	}
	if w.state.Buys <= w.state.Sells {
		return
	}
	if w.meta.MarketCapUSD >= w.cfg.McapThreshold {
		w.logger.Info("market cap threshold crossed, switching to sell",
			zap.Float64("mcap_usd", w.meta.MarketCapUSD),
			zap.Float64("threshold", w.cfg.McapThreshold))
		w.state.Mode = ModeSell
		w.state.SellPercent = 1.0
	}
}

// continueBuying is the buy guard: all conditions must hold for another buy.
func (w *Worker) continueBuying() bool {
	if w.state.Mode != ModeBuy {
		return false
	}
	if w.cfg.BuyOnce && w.state.Buys > 0 {
		return false
	}
	return w.state.Spendings < w.cfg.SpendLimit
}

// nextAmount sizes the next buy, honoring an explicit operator amount when
// one was given. Returns 0 when no viable buy remains.
func (w *Worker) nextAmount() float64 {
	if w.state.BuyAmount > 0 {
		remaining := (w.cfg.SpendLimit - w.state.Spendings) * spendMargin
		amount := math.Min(w.state.BuyAmount, remaining)
		amount = math.Floor(amount*amountDecimals) / amountDecimals
		if amount < SnipeMinBuy {
			return 0
		}
		return amount
	}

	amount := NextBuyAmount(w.rng, w.cfg.MinBuy, w.cfg.MaxBuy, w.cfg.SpendLimit, w.state.Spendings)
	if amount < w.cfg.MinBuy {
		return 0
	}
	return amount
}

func (w *Worker) tradeOptions(slippage float64) trader.TradeOptions {
	return trader.TradeOptions{
		Slippage: slippage,
		Submit: chain.SubmitOptions{
			Priority:      chain.PriorityLevel(w.cfg.Priority),
			ProtectionTip: w.cfg.ProtectionTip,
		},
	}
}

func (w *Worker) stepBuy(ctx context.Context) {
	if w.meta == nil {
		w.wait(ctx, retryInterval)
		return
	}
	if !w.continueBuying() {
		w.logger.Info("buy guard closed, going idle",
			zap.Int("buys", w.state.Buys),
			zap.Float64("spent_sol", w.state.Spendings))
		w.state.Mode = ModeIdle
		return
	}

	amount := w.nextAmount()
	if amount == 0 {
		w.logger.Info("no viable buy size left, going idle",
			zap.Float64("spent_sol", w.state.Spendings))
		w.state.Mode = ModeIdle
		return
	}
	w.state.BuyAmount = 0

	meta := w.meta
	solIn := lamports(amount)
	opts := w.tradeOptions(w.cfg.BuySlippage)
	log := logger.Operation(w.logger, "buy")

	confirmed, lastErr := w.raceAttempts(ctx, log, func(ctx context.Context, attempt int) error {
		res, err := w.venue.Buy(ctx, meta, w.wallet, solIn, opts)
		if err != nil {
			return err
		}
		w.monitor.Buy(w.wallet.Name, amount, res.Signature.String())
		return nil
	})

	if confirmed {
		w.state.Spendings += amount
		w.state.Buys++
		// Fast-path estimate until the next broadcast replaces it.
		if est, err := meta.EstimateAfterBuy(solIn); err == nil {
			w.meta = est
		}
	} else {
		log.Warn("buy round failed", zap.Float64("amount_sol", amount), zap.Error(lastErr))
		if lastErr != nil {
			w.monitor.Error(w.wallet.Name, lastErr)
		}
	}

	w.wait(ctx, randomInterval(w.rng, w.cfg.TradeInterval))
}

func (w *Worker) stepSell(ctx context.Context) {
	if w.meta == nil {
		w.wait(ctx, retryInterval)
		return
	}

	balance := w.tokenBalance(ctx)
	if balance == 0 {
		w.logger.Info("nothing to sell, going idle")
		w.state.Mode = ModeIdle
		w.state.SellPercent = 0
		return
	}

	percent := w.state.SellPercent
	if percent <= 0 {
		percent = 1.0
	}
	amount := scaleByPercent(balance, percent)
	if amount == 0 {
		w.state.Mode = ModeIdle
		w.state.SellPercent = 0
		return
	}

	meta := w.meta
	opts := w.tradeOptions(w.cfg.SellSlippage)
	log := logger.Operation(w.logger, "sell")

	confirmed, lastErr := w.raceAttempts(ctx, log, func(ctx context.Context, attempt int) error {
		res, err := w.venue.Sell(ctx, meta, w.wallet, amount, opts)
		if err != nil {
			return err
		}
		w.monitor.Sell(w.wallet.Name, amount, res.Signature.String())
		return nil
	})

	if confirmed {
		w.state.Sells++
		w.state.Mode = ModeIdle
		w.state.SellPercent = 0
		if est, err := meta.EstimateAfterSell(amount); err == nil {
			w.meta = est
		}
		return
	}

	log.Warn("sell round failed, retrying", zap.Uint64("amount", amount), zap.Error(lastErr))
	if lastErr != nil {
		w.monitor.Error(w.wallet.Name, lastErr)
	}
	w.wait(ctx, retryInterval)
}

// tokenBalance re-reads the held balance with bounded retries: right after a
// buy the token account can lag confirmation, so each miss sleeps
// retryInterval scaled by the retries left.
func (w *Worker) tokenBalance(ctx context.Context) uint64 {
	for remaining := balanceRetries; remaining > 0; remaining-- {
		tb, err := w.client.GetTokenBalance(ctx, w.wallet.PublicKey, w.meta.Mint)
		if err == nil && tb.Amount > 0 {
			return tb.Amount
		}
		if err != nil && !errors.Is(err, chain.ErrAccountNotFound) {
			w.logger.Warn("balance read failed", zap.Error(err))
		}
		if ctx.Err() != nil {
			return 0
		}
		w.wait(ctx, retryInterval*time.Duration(remaining))
	}
	return 0
}

// raceAttempts dispatches a staggered batch of trade attempts and waits for
// all of them. The round succeeds if any attempt confirmed; otherwise the
// last attempt error is returned for reporting. In-flight attempts are never
// aborted mid-round; stop takes effect on the next loop check.
func (w *Worker) raceAttempts(ctx context.Context, log *zap.Logger, attempt func(ctx context.Context, n int) error) (bool, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed bool
		lastErr   error
	)
	for i := 0; i < batchSize; i++ {
		if i > 0 {
			timer := time.NewTimer(attemptStagger)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
			mu.Lock()
			done := confirmed
			mu.Unlock()
			if done || ctx.Err() != nil {
				break
			}
		}

		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := attempt(ctx, n); err != nil {
				log.Debug("trade attempt failed", zap.Int("attempt", n), zap.Error(err))
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return
			}
			mu.Lock()
			confirmed = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return confirmed, lastErr
}
