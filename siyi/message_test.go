package siyi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttitudeDecode(t *testing.T) {
	// yaw 15.5, pitch -25.0, roll 0.3, rates 1.0, -1.0, 0
	payload := []byte{
		0x9b, 0x00, // 155
		0x06, 0xff, // -250
		0x03, 0x00, // 3
		0x0a, 0x00, // 10
		0xf6, 0xff, // -10
		0x00, 0x00,
	}
	var m AttitudeMessage
	if err := m.decode(77, payload); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint16(77), m.Seq)
	assert.Equal(t, 15.5, m.Yaw)
	assert.Equal(t, -25.0, m.Pitch)
	assert.Equal(t, 0.3, m.Roll)
	assert.Equal(t, 1.0, m.YawRate)
	assert.Equal(t, -1.0, m.PitchRate)
	assert.Equal(t, 0.0, m.RollRate)
}

func TestAttitudeDecodeShortPayload(t *testing.T) {
	var m AttitudeMessage
	err := m.decode(1, []byte{0x9b, 0x00})
	assert.Error(t, err)
	// A failed decode must not leave any partial values behind
	assert.Equal(t, uint16(0), m.Seq)
}

func TestFirmwareDecode(t *testing.T) {
	var m FirmwareMessage
	err := m.decode(5, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x02, 0x00, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint16(5), m.Seq)
	assert.Equal(t, "05020000", m.Version())
	assert.Equal(t, "0.2.5", m.SemanticVersion())
}

func TestHardwareIDDecode(t *testing.T) {
	var m HardwareIDMessage
	if err := m.decode(2, []byte("6B12345678xx")); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "6B12345678", m.ID)
	assert.Equal(t, ModelZR10, m.Model)

	var unknown HardwareIDMessage
	if err := unknown.decode(3, []byte("ZZ12345678")); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ModelUnknown, unknown.Model)
}

func TestGimbalInfoDecode(t *testing.T) {
	var m GimbalInfoMessage
	if err := m.decode(9, []byte{0, 0, 0, 1, 2, 1}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, RecordingOn, m.Recording)
	assert.Equal(t, MotionModeFPV, m.MotionMode)
	assert.Equal(t, MountDirectionNormal, m.MountDirection)
}

func TestZoomLevelDecode(t *testing.T) {
	var m ZoomLevelMessage
	if err := m.decode(4, []byte{0xe8, 0x03}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 100.0, m.Level)
}

func TestCurrentZoomDecode(t *testing.T) {
	var m CurrentZoomMessage
	if err := m.decode(4, []byte{0x04, 0x05}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 4.5, m.Level)
}

func TestTemperatureDecode(t *testing.T) {
	var m TemperatureMessage
	if err := m.decode(6, []byte{0x5b, 0x0e, 0x40, 0x01, 0x00, 0x01}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 36.75, m.Temperature)
	assert.Equal(t, 320, m.X)
	assert.Equal(t, 256, m.Y)
}

func TestCodecSpecsDecode(t *testing.T) {
	var m CodecSpecsMessage
	payload := []byte{1, 2, 0x80, 0x07, 0x38, 0x04, 0x00, 0x10, 30}
	if err := m.decode(8, payload); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint8(1), m.StreamType)
	assert.Equal(t, uint8(2), m.EncodingType)
	assert.Equal(t, 1920, m.Width)
	assert.Equal(t, 1080, m.Height)
	assert.Equal(t, 4096, m.Bitrate)
	assert.Equal(t, 30, m.Framerate)
}

func TestAckDecode(t *testing.T) {
	m := AckMessage{Cmd: cmdCenter}
	if err := m.decode(12, []byte{1}); err != nil {
		t.Fatal(err)
	}
	assert.True(t, m.Success)
	assert.Equal(t, cmdCenter, m.command())

	m2 := AckMessage{Cmd: cmdAutoFocus}
	if err := m2.decode(13, []byte{0}); err != nil {
		t.Fatal(err)
	}
	assert.False(t, m2.Success)
}

func TestImageModeDecode(t *testing.T) {
	m := ImageModeMessage{Cmd: cmdRequestImageMode}
	if err := m.decode(3, []byte{3}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ImageMode(3), m.Mode)
	assert.Contains(t, m.Mode.String(), "Zoom")
	assert.Contains(t, ImageMode(42).String(), "unknown")
}

func TestSoftRestartDecode(t *testing.T) {
	var m SoftRestartMessage
	if err := m.decode(1, []byte{1, 0}); err != nil {
		t.Fatal(err)
	}
	assert.True(t, m.CameraRestarted)
	assert.False(t, m.GimbalRestarted)
}

func TestSetAttitudeDecodeEcho(t *testing.T) {
	var m SetAttitudeMessage
	if err := m.decode(2, []byte{0x9b, 0x00, 0x06, 0xff, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 15.5, m.Yaw)
	assert.Equal(t, -25.0, m.Pitch)
}

func TestGetMessageCoversAllCommands(t *testing.T) {
	cmds := []command{
		cmdFirmwareVersion, cmdHardwareID, cmdAutoFocus, cmdManualZoom,
		cmdManualFocus, cmdGimbalSpeed, cmdCenter, cmdGimbalInfo,
		cmdFunctionFeedback, cmdGimbalAttitude, cmdSetGimbalAttitude,
		cmdAbsoluteZoom, cmdRequestImageMode, cmdSendImageMode,
		cmdTemperatureAtPoint, cmdCurrentZoomValue, cmdRequestCodecSpecs,
		cmdSendCodecSpecs, cmdSetDataStream, cmdSoftRestart,
	}
	for _, cmd := range cmds {
		msg := getMessage(cmd)
		if msg == nil {
			t.Errorf("no message registered for %v", cmd)
			continue
		}
		assert.Equal(t, cmd, msg.command())
	}
	assert.Nil(t, getMessage(command(0xfe)))
}
