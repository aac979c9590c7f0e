// internal/sniper/detect_test.go
package sniper

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeCreateEvent(name, symbol, uri string, mint, curve, creator solana.PublicKey) []byte {
	data := append([]byte(nil), createEventDiscriminator...)
	for _, s := range []string{name, symbol, uri} {
		data = binary.LittleEndian.AppendUint32(data, uint32(len(s)))
		data = append(data, s...)
	}
	data = append(data, mint.Bytes()...)
	data = append(data, curve.Bytes()...)
	data = append(data, creator.Bytes()...)
	return data
}

func TestDecodeCreateEvent(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	curve := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()

	payload := encodeCreateEvent("Moon Cat", "MCAT", "https://example.com/meta.json", mint, curve, creator)
	event, err := DecodeCreateEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, "Moon Cat", event.Name)
	assert.Equal(t, "MCAT", event.Symbol)
	assert.Equal(t, "https://example.com/meta.json", event.URI)
	assert.Equal(t, mint, event.Mint)
	assert.Equal(t, curve, event.Curve)
	assert.Equal(t, creator, event.Creator)
}

func TestDecodeCreateEventRejectsGarbage(t *testing.T) {
	_, err := DecodeCreateEvent(nil)
	assert.Error(t, err)

	_, err = DecodeCreateEvent([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Error(t, err)

	// Right discriminator, truncated body.
	payload := append([]byte(nil), createEventDiscriminator...)
	payload = binary.LittleEndian.AppendUint32(payload, 100)
	_, err = DecodeCreateEvent(payload)
	assert.Error(t, err)
}

func TestCreateEventMatching(t *testing.T) {
	event := &CreateEvent{Name: "Moon Cat", Symbol: "MCAT"}

	assert.True(t, event.matches("moon cat", ""))
	assert.True(t, event.matches("", "mcat"))
	assert.True(t, event.matches("MOON CAT", "McAt"))
	assert.False(t, event.matches("moon", ""))
	assert.False(t, event.matches("moon cat", "wrong"))
	assert.False(t, event.matches("", ""), "empty filters must never match")
}
