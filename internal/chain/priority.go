// internal/chain/priority.go
package chain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

// PriorityLevel selects a compute-budget profile for transaction inclusion.
type PriorityLevel string

const (
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

type priorityProfile struct {
	computeUnits uint32
	priorityFee  uint64 // micro-lamports per compute unit
	heapSize     uint32
}

var priorityProfiles = map[PriorityLevel]priorityProfile{
	PriorityLow:     {computeUnits: 200_000, priorityFee: 1_000},
	PriorityMedium:  {computeUnits: 400_000, priorityFee: 5_000},
	PriorityHigh:    {computeUnits: 800_000, priorityFee: 10_000},
	PriorityExtreme: {computeUnits: 1_000_000, priorityFee: 50_000, heapSize: 32 * 1024},
}

// ValidPriority reports whether level names a known profile.
func ValidPriority(level PriorityLevel) bool {
	_, ok := priorityProfiles[level]
	return ok
}

// PriorityInstructions returns the compute-budget instructions for the given
// level, to be prepended to the trade instructions.
func PriorityInstructions(level PriorityLevel) ([]solana.Instruction, error) {
	profile, ok := priorityProfiles[level]
	if !ok {
		return nil, fmt.Errorf("unknown priority level: %s", level)
	}

	var instructions []solana.Instruction
	if profile.computeUnits > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstruction(profile.computeUnits).Build())
	}
	if profile.priorityFee > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(profile.priorityFee).Build())
	}
	if profile.heapSize > 0 {
		instructions = append(instructions,
			computebudget.NewRequestHeapFrameInstruction(profile.heapSize).Build())
	}
	return instructions, nil
}
