package siyi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	payload := []byte{0x9b, 0x00, 0x1a, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	b := encodeFrame(cmdGimbalAttitude, 42, payload)
	assert.Equal(t, minFrameSize+len(payload), len(b))
	assert.Equal(t, syncMarker[0], b[0])
	assert.Equal(t, syncMarker[1], b[1])

	f, err := parseFrame(b)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, cmdGimbalAttitude, f.Cmd)
	assert.Equal(t, uint16(42), f.Seq)
	assert.Equal(t, payload, f.Payload)
}

func TestEncodeEmptyPayload(t *testing.T) {
	b := encodeFrame(cmdFirmwareVersion, 1, nil)
	assert.Equal(t, minFrameSize, len(b))

	f, err := parseFrame(b)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, cmdFirmwareVersion, f.Cmd)
	assert.Equal(t, 0, len(f.Payload))
}

func TestParseFrameBadChecksum(t *testing.T) {
	b := encodeFrame(cmdCenter, 7, []byte{1})
	b[headerSize] ^= 0xff
	_, err := parseFrame(b)
	assert.Error(t, err)
	var ce *checksumError
	assert.ErrorAs(t, err, &ce)
}

func TestDecoderSingleFrame(t *testing.T) {
	var d decoder
	frames := d.feed(encodeFrame(cmdHardwareID, 3, []byte("6B00000001")))
	if len(frames) != 1 {
		t.Fatalf("expecting 1 frame, got %d", len(frames))
	}
	assert.Equal(t, cmdHardwareID, frames[0].Cmd)
	assert.Equal(t, uint16(3), frames[0].Seq)
	assert.Equal(t, 0, len(d.buf))
}

func TestDecoderResync(t *testing.T) {
	valid := encodeFrame(cmdGimbalAttitude, 9, make([]byte, 12))
	for n := 0; n <= 300; n++ {
		var d decoder
		garbage := make([]byte, n)
		for i := range garbage {
			garbage[i] = byte(i)
		}
		frames := d.feed(append(garbage, valid...))
		if len(frames) != 1 {
			t.Fatalf("garbage length %d: expecting 1 frame, got %d", n, len(frames))
		}
		assert.Equal(t, uint16(9), frames[0].Seq)
	}
}

func TestDecoderResyncFalseSyncByte(t *testing.T) {
	valid := encodeFrame(cmdCenter, 2, []byte{1})
	var d decoder
	frames := d.feed(append([]byte{0x55, 0x55, 0x66}, valid...))
	// The garbage prefix almost looks like a sync marker but the
	// real frame must still come out
	if len(frames) != 1 {
		t.Fatalf("expecting 1 frame, got %d", len(frames))
	}
	assert.Equal(t, cmdCenter, frames[0].Cmd)
}

func TestDecoderSplitFrames(t *testing.T) {
	valid := encodeFrame(cmdGimbalAttitude, 11, []byte{0x9b, 0x00, 0x1a, 0xff, 0, 0, 0, 0, 0, 0, 0, 0})
	for split := 1; split < len(valid); split++ {
		var d decoder
		frames := d.feed(valid[:split])
		frames = append(frames, d.feed(valid[split:])...)
		if len(frames) != 1 {
			t.Fatalf("split at %d: expecting 1 frame, got %d", split, len(frames))
		}
		assert.Equal(t, uint16(11), frames[0].Seq)
		assert.Equal(t, valid[headerSize:headerSize+12], frames[0].Payload)
	}
}

func TestDecoderMultipleFramesOneFeed(t *testing.T) {
	var buf []byte
	for i := 0; i < 5; i++ {
		buf = append(buf, encodeFrame(cmdFirmwareVersion, uint16(i), nil)...)
	}
	var d decoder
	frames := d.feed(buf)
	if len(frames) != 5 {
		t.Fatalf("expecting 5 frames, got %d", len(frames))
	}
	for i, f := range frames {
		assert.Equal(t, uint16(i), f.Seq)
	}
}

func TestDecoderDropsCorruptFrame(t *testing.T) {
	bad := encodeFrame(cmdCenter, 1, []byte{1})
	bad[headerSize] ^= 0xff
	good := encodeFrame(cmdGimbalInfo, 2, make([]byte, 6))

	var d decoder
	frames := d.feed(append(bad, good...))
	if len(frames) != 1 {
		t.Fatalf("expecting 1 frame, got %d", len(frames))
	}
	assert.Equal(t, cmdGimbalInfo, frames[0].Cmd)
	assert.Equal(t, uint16(2), frames[0].Seq)
}

func TestDecoderWaitsForPartialFrame(t *testing.T) {
	valid := encodeFrame(cmdGimbalAttitude, 1, make([]byte, 12))
	var d decoder
	frames := d.feed(valid[:minFrameSize])
	assert.Equal(t, 0, len(frames))
	// The partial frame stays buffered, nothing is emitted early
	assert.Equal(t, minFrameSize, len(d.buf))
}
