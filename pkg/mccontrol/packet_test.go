package mccontrol

import (
	"bytes"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePacketBytes(t *testing.T) {
	data, err := EncodePacket(7, PacketTypeCommand, []byte("list"))
	require.NoError(t, err)

	want := []byte{
		0x0e, 0x00, 0x00, 0x00, // 长度 14
		0x07, 0x00, 0x00, 0x00, // ID
		0x02, 0x00, 0x00, 0x00, // 类型
		'l', 'i', 's', 't',
		0x00, 0x00,
	}
	assert.Equal(t, want, data)
}

func TestEncodePacketNegativeID(t *testing.T) {
	data, err := EncodePacket(-1, PacketTypeCommand, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, data[4:8])
	assert.Len(t, data, 4+MinPacketLength)
}

func TestPacketRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		id      int32
		typ     int32
		payload []byte
	}{
		{"auth", 1, PacketTypeAuth, []byte("hunter2")},
		{"command", 100000, PacketTypeCommand, []byte("say hello world")},
		{"empty body", 42, PacketTypeCommand, []byte{}},
		{"auth failure echo", -1, PacketTypeCommand, []byte{}},
		{"max id", math.MaxInt32, 0, []byte("x")},
		{"binary body", 9, 77, []byte{0x00, 0xff, 0x10, 0x00}},
		{"colour codes", 3, 0, []byte("§cAlice§r")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePacket(tt.id, tt.typ, tt.payload)
			require.NoError(t, err)

			got, err := DecodePacket(bytes.NewReader(data))
			require.NoError(t, err)

			want := &Packet{ID: tt.id, Type: tt.typ, Body: tt.payload}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodePacketTooShort(t *testing.T) {
	for length := 0; length < MinPacketLength; length++ {
		data := make([]byte, 4+MinPacketLength)
		data[0] = byte(length)

		_, err := DecodePacket(bytes.NewReader(data))
		require.Error(t, err, "length %d", length)
		assert.True(t, errors.Is(err, ErrProtocol), "length %d: %v", length, err)
	}
}

func TestDecodePacketNegativeLength(t *testing.T) {
	_, err := DecodePacket(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodePacketTooLong(t *testing.T) {
	_, err := DecodePacket(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x40}))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodePacketShortHeader(t *testing.T) {
	_, err := DecodePacket(bytes.NewReader([]byte{0x0a, 0x00}))
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.True(t, isNoReply(err))

	_, err = DecodePacket(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.True(t, isNoReply(err))
}

func TestNoReplyExcludesTimeoutAndProtocol(t *testing.T) {
	assert.False(t, isNoReply(newError(KindTimeout, "read", errors.New("i/o timeout"))))
	assert.False(t, isNoReply(newError(KindProtocol, "read", errors.New("truncated packet"))))
}

func TestDecodePacketTruncatedBody(t *testing.T) {
	data, err := EncodePacket(5, PacketTypeCommand, []byte("hello"))
	require.NoError(t, err)

	_, err = DecodePacket(bytes.NewReader(data[:len(data)-3]))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodePacketStripsTerminatorWithoutValidation(t *testing.T) {
	data, err := EncodePacket(5, PacketTypeCommand, []byte("ab"))
	require.NoError(t, err)
	data[len(data)-2] = 'X'
	data[len(data)-1] = 'Y'

	p, err := DecodePacket(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), p.Body)
}

func TestDecodePacketTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(20*time.Millisecond)))
	_, err := DecodePacket(client)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrConnectivity)
}
