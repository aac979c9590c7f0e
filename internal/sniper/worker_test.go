// internal/sniper/worker_test.go
package sniper

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/config"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/ui"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

// fakeVenue confirms every trade and counts calls.
type fakeVenue struct {
	mu    sync.Mutex
	buys  int
	sells int
}

func (f *fakeVenue) Name() string { return "fake" }

func (f *fakeVenue) DefaultMeta(mint solana.PublicKey) *trader.MintMeta {
	return &trader.MintMeta{Mint: mint}
}

func (f *fakeVenue) UpdateMeta(_ context.Context, meta *trader.MintMeta) (*trader.MintMeta, error) {
	return meta, nil
}

func (f *fakeVenue) BuyInstructions(*trader.MintMeta, *wallet.Wallet, uint64, uint64, uint64) ([]solana.Instruction, error) {
	return nil, nil
}

func (f *fakeVenue) SellInstructions(*trader.MintMeta, *wallet.Wallet, uint64, uint64) ([]solana.Instruction, error) {
	return nil, nil
}

func (f *fakeVenue) Buy(context.Context, *trader.MintMeta, *wallet.Wallet, uint64, trader.TradeOptions) (*trader.TradeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buys++
	return &trader.TradeResult{}, nil
}

func (f *fakeVenue) Sell(context.Context, *trader.MintMeta, *wallet.Wallet, uint64, trader.TradeOptions) (*trader.TradeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sells++
	return &trader.TradeResult{}, nil
}

func (f *fakeVenue) buyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buys
}

func testMeta() *trader.MintMeta {
	return &trader.MintMeta{
		Mint:          solana.NewWallet().PublicKey(),
		Curve:         solana.NewWallet().PublicKey(),
		FeeRecipient:  solana.NewWallet().PublicKey(),
		SolReserves:   30_000_852_951,
		TokenReserves: 1_073_025_605_596_382,
		TotalSupply:   1_000_000_000_000_000,
		FeeRate:       0.01,
		Decimals:      6,
	}
}

func testWorker(t *testing.T, venue trader.Trader, cfg config.Config) *Worker {
	t.Helper()
	w, err := wallet.New("w0", solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	worker := newWorker(0, w, venue, nil, cfg, ui.NewMonitorWriter(io.Discard), zap.NewNop())
	worker.meta = testMeta()
	return worker
}

func buyOnceConfig() config.Config {
	return config.Config{
		SpendLimit:    1.0,
		MinBuy:        0.1,
		MaxBuy:        0.1,
		BuyOnce:       true,
		TradeInterval: time.Millisecond,
		BuySlippage:   0.15,
		SellSlippage:  0.25,
		Priority:      "medium",
	}
}

func TestBuyOnceGuardStopsSecondBuy(t *testing.T) {
	venue := &fakeVenue{}
	worker := testWorker(t, venue, buyOnceConfig())
	worker.state.Mode = ModeBuy

	ctx := context.Background()
	worker.stepBuy(ctx)

	require.Equal(t, 1, worker.state.Buys)
	assert.InDelta(t, 0.1, worker.state.Spendings, 1e-9)
	assert.Equal(t, ModeBuy, worker.state.Mode, "mode is still nominally buy")

	// The guard must close on the next evaluation: idle, no second round.
	callsAfterFirst := venue.buyCalls()
	worker.stepBuy(ctx)
	assert.Equal(t, ModeIdle, worker.state.Mode)
	assert.Equal(t, 1, worker.state.Buys)
	assert.Equal(t, callsAfterFirst, venue.buyCalls())
}

func TestSpendLimitClosesGuard(t *testing.T) {
	venue := &fakeVenue{}
	cfg := buyOnceConfig()
	cfg.BuyOnce = false
	worker := testWorker(t, venue, cfg)
	worker.state.Mode = ModeBuy
	worker.state.Spendings = 1.0

	worker.stepBuy(context.Background())
	assert.Equal(t, ModeIdle, worker.state.Mode)
	assert.Zero(t, venue.buyCalls())
}

func TestSellPriorityPreemption(t *testing.T) {
	cfg := buyOnceConfig()
	cfg.McapThreshold = 10_000
	worker := testWorker(t, &fakeVenue{}, cfg)
	worker.state.Mode = ModeBuy
	worker.state.Buys = 1

	// Below threshold: stay in buy.
	worker.meta.MarketCapUSD = 9_999
	worker.checkSellTrigger()
	assert.Equal(t, ModeBuy, worker.state.Mode)

	// Crossing the threshold must select sell regardless of remaining sleep.
	worker.meta.MarketCapUSD = 10_000
	worker.checkSellTrigger()
	assert.Equal(t, ModeSell, worker.state.Mode)
	assert.Equal(t, 1.0, worker.state.SellPercent)
}

func TestSellTriggerNeedsPosition(t *testing.T) {
	cfg := buyOnceConfig()
	cfg.McapThreshold = 10_000
	worker := testWorker(t, &fakeVenue{}, cfg)
	worker.state.Mode = ModeBuy
	worker.meta.MarketCapUSD = 50_000

	// No tokens held yet: nothing to sell.
	worker.checkSellTrigger()
	assert.Equal(t, ModeBuy, worker.state.Mode)
}

func TestStopIsTerminal(t *testing.T) {
	worker := testWorker(t, &fakeVenue{}, buyOnceConfig())
	worker.handleCommand(Command{Kind: CmdStop})
	require.Equal(t, ModeStop, worker.state.Mode)

	// No command revives a stopped worker.
	worker.handleCommand(Command{Kind: CmdBuy})
	assert.Equal(t, ModeStop, worker.state.Mode)
}

func TestStopInterruptsSleep(t *testing.T) {
	worker := testWorker(t, &fakeVenue{}, buyOnceConfig())
	worker.Send(Command{Kind: CmdStop})

	start := time.Now()
	worker.wait(context.Background(), 10*time.Second)
	assert.Less(t, time.Since(start), time.Second, "stop must cut the sleep short")
	assert.Equal(t, ModeStop, worker.state.Mode)
}

func TestPublishDropsStaleSnapshot(t *testing.T) {
	worker := testWorker(t, &fakeVenue{}, buyOnceConfig())

	stale := testMeta()
	fresh := testMeta()
	fresh.MarketCapUSD = 42

	worker.Publish(stale)
	worker.Publish(fresh)
	worker.drain()
	assert.Equal(t, 42.0, worker.meta.MarketCapUSD)
}

func TestExplicitBuyAmountOneShot(t *testing.T) {
	cfg := buyOnceConfig()
	cfg.BuyOnce = false
	worker := testWorker(t, &fakeVenue{}, cfg)
	worker.state.Mode = ModeBuy
	worker.state.BuyAmount = 0.25

	worker.stepBuy(context.Background())
	assert.InDelta(t, 0.25, worker.state.Spendings, 1e-9)
	assert.Zero(t, worker.state.BuyAmount, "explicit amount applies to one round only")
}

func TestWorkerRunGracefulStop(t *testing.T) {
	worker := testWorker(t, &fakeVenue{}, buyOnceConfig())
	started := make(chan int, 1)

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(context.Background(), started)
	}()

	select {
	case id := <-started:
		assert.Equal(t, 0, id)
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reported started")
	}

	worker.Send(Command{Kind: CmdStop})
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerStopsWithUndrainedStartupChannel(t *testing.T) {
	worker := testWorker(t, &fakeVenue{}, buyOnceConfig())
	// Buffered the way the coordinator allocates it. Nobody receives, as when
	// startup times out and the coordinator stops listening.
	started := make(chan int, 1)

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(context.Background(), started)
	}()

	worker.Send(Command{Kind: CmdStop})
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker ignored stop while its startup report sat unread")
	}
}

// failingVenue rejects every trade.
type failingVenue struct {
	fakeVenue
}

func (f *failingVenue) Buy(context.Context, *trader.MintMeta, *wallet.Wallet, uint64, trader.TradeOptions) (*trader.TradeResult, error) {
	return nil, errors.New("blockhash expired")
}

func (f *failingVenue) Sell(context.Context, *trader.MintMeta, *wallet.Wallet, uint64, trader.TradeOptions) (*trader.TradeResult, error) {
	return nil, errors.New("blockhash expired")
}

func TestFailedBuyRoundReportsError(t *testing.T) {
	var out bytes.Buffer
	w, err := wallet.New("w0", solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	worker := newWorker(0, w, &failingVenue{}, nil, buyOnceConfig(),
		ui.NewMonitorWriter(&out), zap.NewNop())
	worker.meta = testMeta()
	worker.state.Mode = ModeBuy

	worker.stepBuy(context.Background())
	assert.Zero(t, worker.state.Buys)
	assert.Zero(t, worker.state.Spendings)
	assert.Contains(t, out.String(), "ERR")
	assert.Contains(t, out.String(), "w0")
	assert.Contains(t, out.String(), "blockhash expired")
}
