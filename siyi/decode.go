package siyi

import (
	"encoding/binary"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var errShortFrame = errors.New("frame too short")

type checksumError struct {
	Got      uint16
	Expected uint16
}

func (e *checksumError) Error() string {
	return fmt.Sprintf("invalid checksum 0x%04x vs expected 0x%04x", e.Got, e.Expected)
}

// encodeFrame builds a complete outgoing frame: sync marker, ctrl
// byte, payload length, sequence number, command, payload, CRC16.
func encodeFrame(cmd command, seq uint16, payload []byte) []byte {
	buf := make([]byte, 0, minFrameSize+len(payload))
	buf = append(buf, syncMarker[0], syncMarker[1], ctrlNeedAck)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(payload)))
	buf = binary.LittleEndian.AppendUint16(buf, seq)
	buf = append(buf, byte(cmd))
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint16(buf, frameChecksum(buf))
	return buf
}

// parseFrame decodes one complete frame. The caller must pass the
// exact frame bytes, sync marker included.
func parseFrame(b []byte) (*frame, error) {
	if len(b) < minFrameSize {
		return nil, errShortFrame
	}
	payloadLen := int(binary.LittleEndian.Uint16(b[3:5]))
	if len(b) != minFrameSize+payloadLen {
		return nil, fmt.Errorf("frame size %d does not match payload length %d", len(b), payloadLen)
	}
	sum := binary.LittleEndian.Uint16(b[len(b)-2:])
	if expected := frameChecksum(b[:len(b)-2]); sum != expected {
		return nil, &checksumError{Got: sum, Expected: expected}
	}
	payload := make([]byte, payloadLen)
	copy(payload, b[headerSize:headerSize+payloadLen])
	return &frame{
		Cmd:     command(b[7]),
		Seq:     binary.LittleEndian.Uint16(b[5:7]),
		Payload: payload,
	}, nil
}

// decoder extracts frames from an arbitrary incoming byte stream.
// Bytes left over from one feed call are kept until the next one,
// so frames may arrive split across any number of datagrams.
type decoder struct {
	buf []byte
}

func (d *decoder) feed(p []byte) []*frame {
	d.buf = append(d.buf, p...)
	var frames []*frame
	for len(d.buf) >= minFrameSize {
		if d.buf[0] != syncMarker[0] || d.buf[1] != syncMarker[1] {
			// Drop one leading byte and retry until a sync
			// marker lines up.
			d.buf = d.buf[1:]
			continue
		}
		payloadLen := int(binary.LittleEndian.Uint16(d.buf[3:5]))
		total := minFrameSize + payloadLen
		if len(d.buf) < total {
			// Wait for the rest of the frame
			break
		}
		f, err := parseFrame(d.buf[:total])
		if err != nil {
			log.Warnf("dropping frame: %v", err)
			// Skip the sync marker and rescan, in case the
			// length field itself was corrupted.
			d.buf = d.buf[2:]
			continue
		}
		frames = append(frames, f)
		d.buf = d.buf[total:]
	}
	return frames
}
