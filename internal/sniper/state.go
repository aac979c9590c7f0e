// internal/sniper/state.go
package sniper

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is a worker's state machine tag. Exactly one mode is active at a time;
// ModeStop is terminal.
type Mode int

const (
	ModeIdle Mode = iota
	ModeBuy
	ModeSell
	ModeStop
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeBuy:
		return "buy"
	case ModeSell:
		return "sell"
	case ModeStop:
		return "stop"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// WorkerState is the per-worker mutable state.
type WorkerState struct {
	Mode Mode
	// BuyAmount is the SOL size of the next buy; meaningful only in ModeBuy.
	BuyAmount float64
	// SellPercent scales the next sell against the held balance; meaningful
	// only in ModeSell. 1.0 sells everything.
	SellPercent float64
	// Spendings is cumulative SOL spent on confirmed buys.
	Spendings float64
	Buys      int
	Sells     int
}

// CommandKind enumerates operator commands.
type CommandKind int

const (
	CmdStop CommandKind = iota
	CmdBuy
	CmdSell
	CmdConfig
	CmdShowConfig
)

// BroadcastID targets a command at every worker.
const BroadcastID = -1

// Command is one operator instruction, parsed from the command channel.
type Command struct {
	Kind     CommandKind
	Amount   float64 // CmdBuy: SOL size; 0 means "use sized amount"
	Percent  float64 // CmdSell: fraction of balance; 0 means all
	WorkerID int     // target worker, or BroadcastID
	Key      string  // CmdConfig
	Value    string  // CmdConfig
}

// ParseCommand parses an operator line:
//
//	stop
//	buy [amount] [worker_id]
//	sell [percent] [worker_id]
//	config <key> <value>
//	config
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch strings.ToLower(fields[0]) {
	case "stop":
		return Command{Kind: CmdStop, WorkerID: BroadcastID}, nil

	case "buy":
		cmd := Command{Kind: CmdBuy, WorkerID: BroadcastID}
		if len(fields) > 1 {
			amount, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || amount < 0 {
				return Command{}, fmt.Errorf("invalid buy amount %q", fields[1])
			}
			cmd.Amount = amount
		}
		if len(fields) > 2 {
			id, err := strconv.Atoi(fields[2])
			if err != nil || id < 0 {
				return Command{}, fmt.Errorf("invalid worker id %q", fields[2])
			}
			cmd.WorkerID = id
		}
		return cmd, nil

	case "sell":
		cmd := Command{Kind: CmdSell, WorkerID: BroadcastID, Percent: 1.0}
		if len(fields) > 1 {
			percent, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || percent <= 0 || percent > 100 {
				return Command{}, fmt.Errorf("invalid sell percent %q", fields[1])
			}
			// Operators type whole percentages; fractions pass through.
			if percent > 1 {
				percent /= 100
			}
			cmd.Percent = percent
		}
		if len(fields) > 2 {
			id, err := strconv.Atoi(fields[2])
			if err != nil || id < 0 {
				return Command{}, fmt.Errorf("invalid worker id %q", fields[2])
			}
			cmd.WorkerID = id
		}
		return cmd, nil

	case "config":
		if len(fields) == 1 {
			return Command{Kind: CmdShowConfig}, nil
		}
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("usage: config <key> <value>")
		}
		return Command{Kind: CmdConfig, WorkerID: BroadcastID, Key: fields[1], Value: fields[2]}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}
