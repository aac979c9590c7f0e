// internal/sniper/detect.go
package sniper

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// createEventDiscriminator prefixes the creation event payload emitted in the
// program's "Program data:" log line.
var createEventDiscriminator = []byte{27, 114, 169, 77, 222, 235, 99, 118}

const programDataPrefix = "Program data: "

// CreateEvent is the decoded token-creation payload.
type CreateEvent struct {
	Name    string
	Symbol  string
	URI     string
	Mint    solana.PublicKey
	Curve   solana.PublicKey
	Creator solana.PublicKey
}

// DecodeCreateEvent parses a creation event: the discriminator, three
// u32-length-prefixed strings, then three 32-byte public keys.
func DecodeCreateEvent(data []byte) (*CreateEvent, error) {
	if len(data) < len(createEventDiscriminator) ||
		!bytes.Equal(data[:len(createEventDiscriminator)], createEventDiscriminator) {
		return nil, fmt.Errorf("not a creation event")
	}
	rest := data[len(createEventDiscriminator):]

	var event CreateEvent
	var err error
	for _, field := range []*string{&event.Name, &event.Symbol, &event.URI} {
		if *field, rest, err = readString(rest); err != nil {
			return nil, err
		}
	}
	for _, key := range []*solana.PublicKey{&event.Mint, &event.Curve, &event.Creator} {
		if len(rest) < solana.PublicKeyLength {
			return nil, fmt.Errorf("creation event truncated")
		}
		*key = solana.PublicKeyFromBytes(rest[:solana.PublicKeyLength])
		rest = rest[solana.PublicKeyLength:]
	}
	return &event, nil
}

func readString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("creation event truncated")
	}
	n := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint32(len(data)) < n {
		return "", nil, fmt.Errorf("creation event string overruns payload")
	}
	return string(data[:n]), data[n:], nil
}

// matches reports whether the event matches the configured name/symbol
// filters, case-insensitively. Empty filters match anything.
func (e *CreateEvent) matches(name, symbol string) bool {
	if name != "" && !strings.EqualFold(e.Name, name) {
		return false
	}
	if symbol != "" && !strings.EqualFold(e.Symbol, symbol) {
		return false
	}
	return name != "" || symbol != ""
}

// Detector watches the launch program's log feed for matching token creations.
type Detector struct {
	wsURL     string
	programID solana.PublicKey
	logger    *zap.Logger
}

// NewDetector builds a detector over the given websocket endpoint.
func NewDetector(wsURL string, programID solana.PublicKey, logger *zap.Logger) *Detector {
	return &Detector{
		wsURL:     wsURL,
		programID: programID,
		logger:    logger.Named("detector"),
	}
}

// WaitForToken blocks until a creation matching name/symbol appears or ctx is
// cancelled. The subscription is torn down on both outcomes.
func (d *Detector) WaitForToken(ctx context.Context, name, symbol string) (*CreateEvent, error) {
	client, err := ws.Connect(ctx, d.wsURL)
	if err != nil {
		return nil, fmt.Errorf("websocket connect failed: %w", err)
	}
	defer client.Close()

	sub, err := client.LogsSubscribeMentions(d.programID, rpc.CommitmentProcessed)
	if err != nil {
		return nil, fmt.Errorf("log subscription failed: %w", err)
	}
	defer sub.Unsubscribe()

	d.logger.Info("watching for token creation",
		zap.String("name", name), zap.String("symbol", symbol))

	for {
		msg, err := sub.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("log feed closed: %w", err)
		}
		if msg.Value.Err != nil {
			continue
		}

		for _, line := range msg.Value.Logs {
			if !strings.HasPrefix(line, programDataPrefix) {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programDataPrefix))
			if err != nil {
				continue
			}
			event, err := DecodeCreateEvent(raw)
			if err != nil {
				continue
			}
			d.logger.Debug("token created",
				zap.String("name", event.Name),
				zap.String("symbol", event.Symbol),
				zap.String("mint", event.Mint.String()))
			if event.matches(name, symbol) {
				d.logger.Info("target token found",
					zap.String("name", event.Name),
					zap.String("symbol", event.Symbol),
					zap.String("mint", event.Mint.String()))
				return event, nil
			}
		}
	}
}
