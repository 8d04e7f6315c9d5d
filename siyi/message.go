package siyi

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

type message interface {
	command() command
	decode(seq uint16, payload []byte) error
}

func payloadSizeError(cmd command, got, expected int) error {
	return fmt.Errorf("%v: invalid payload size %d, expecting %d", cmd, got, expected)
}

// RecordingState reports whether the camera is recording video
type RecordingState uint8

const (
	// RecordingOff means the camera is not recording
	RecordingOff RecordingState = 0
	// RecordingOn means the camera is recording to the SD card
	RecordingOn RecordingState = 1
	// RecordingNoCard means there's no SD card inserted
	RecordingNoCard RecordingState = 2
	// RecordingError means recording stopped due to a data loss error
	RecordingError RecordingState = 3
)

func (s RecordingState) String() string {
	switch s {
	case RecordingOff:
		return "off"
	case RecordingOn:
		return "on"
	case RecordingNoCard:
		return "no SD card"
	case RecordingError:
		return "error"
	}
	return fmt.Sprintf("unknown recording state %d", uint8(s))
}

// MotionMode is the gimbal stabilization mode
type MotionMode uint8

const (
	// MotionModeLock keeps the gimbal fixed relative to the vehicle heading
	MotionModeLock MotionMode = 0
	// MotionModeFollow makes the gimbal yaw follow the vehicle heading
	MotionModeFollow MotionMode = 1
	// MotionModeFPV locks all axes to the vehicle frame
	MotionModeFPV MotionMode = 2
)

func (m MotionMode) String() string {
	switch m {
	case MotionModeLock:
		return "lock"
	case MotionModeFollow:
		return "follow"
	case MotionModeFPV:
		return "FPV"
	}
	return fmt.Sprintf("unknown motion mode %d", uint8(m))
}

// MountDirection reports how the gimbal is mounted
type MountDirection uint8

const (
	// MountDirectionUnknown means the gimbal hasn't reported a direction yet
	MountDirectionUnknown MountDirection = 0
	// MountDirectionNormal is the upright mount
	MountDirectionNormal MountDirection = 1
	// MountDirectionInverted is the upside down mount
	MountDirectionInverted MountDirection = 2
)

// FirmwareMessage is returned in response to a firmware version
// request. The first four payload bytes carry the camera board
// version and the next four the gimbal firmware version.
type FirmwareMessage struct {
	Seq           uint16
	CameraVersion [4]byte
	GimbalVersion [4]byte
}

func (m *FirmwareMessage) command() command { return cmdFirmwareVersion }
func (m *FirmwareMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 8 {
		return payloadSizeError(cmdFirmwareVersion, len(payload), 8)
	}
	m.Seq = seq
	copy(m.CameraVersion[:], payload[:4])
	copy(m.GimbalVersion[:], payload[4:8])
	return nil
}

// Version returns the raw gimbal firmware version in hex form
func (m *FirmwareMessage) Version() string {
	return hex.EncodeToString(m.GimbalVersion[:])
}

// HardwareIDMessage carries the 10 character hardware identifier.
// The first two characters select the camera model.
type HardwareIDMessage struct {
	Seq   uint16
	ID    string
	Model CameraModel
}

func (m *HardwareIDMessage) command() command { return cmdHardwareID }
func (m *HardwareIDMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 10 {
		return payloadSizeError(cmdHardwareID, len(payload), 10)
	}
	m.Seq = seq
	m.ID = string(payload[:10])
	m.Model = cameraModelForID(m.ID)
	return nil
}

// AttitudeMessage is the gimbal attitude plus angular rates, in
// degrees and degrees per second.
type AttitudeMessage struct {
	Seq       uint16
	Yaw       float64
	Pitch     float64
	Roll      float64
	YawRate   float64
	PitchRate float64
	RollRate  float64
}

func (m *AttitudeMessage) command() command { return cmdGimbalAttitude }
func (m *AttitudeMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 12 {
		return payloadSizeError(cmdGimbalAttitude, len(payload), 12)
	}
	fields := []*float64{&m.Yaw, &m.Pitch, &m.Roll, &m.YawRate, &m.PitchRate, &m.RollRate}
	for i, f := range fields {
		// int16, tenths of a degree
		*f = float64(int16(binary.LittleEndian.Uint16(payload[2*i:]))) / 10
	}
	m.Seq = seq
	return nil
}

// GimbalInfoMessage is the low rate status block: recording state,
// motion mode and mounting direction.
type GimbalInfoMessage struct {
	Seq            uint16
	Recording      RecordingState
	MotionMode     MotionMode
	MountDirection MountDirection
}

func (m *GimbalInfoMessage) command() command { return cmdGimbalInfo }
func (m *GimbalInfoMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 6 {
		return payloadSizeError(cmdGimbalInfo, len(payload), 6)
	}
	m.Seq = seq
	m.Recording = RecordingState(payload[3])
	m.MotionMode = MotionMode(payload[4])
	m.MountDirection = MountDirection(payload[5])
	return nil
}

// FunctionFeedbackMessage reports the outcome of photo, HDR and
// recording requests.
type FunctionFeedbackMessage struct {
	Seq  uint16
	Code uint8
}

// Function feedback codes
const (
	FeedbackSuccess     = 0
	FeedbackPhotoFailed = 1
	FeedbackHDROn       = 2
	FeedbackHDROff      = 3
	FeedbackRecordFail  = 4
)

func (m *FunctionFeedbackMessage) command() command { return cmdFunctionFeedback }
func (m *FunctionFeedbackMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 1 {
		return payloadSizeError(cmdFunctionFeedback, len(payload), 1)
	}
	m.Seq = seq
	m.Code = payload[0]
	return nil
}

// AckMessage is the single success byte reply shared by the
// focus, speed, centering and absolute zoom commands.
type AckMessage struct {
	Cmd     command
	Seq     uint16
	Success bool
}

func (m *AckMessage) command() command { return m.Cmd }
func (m *AckMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 1 {
		return payloadSizeError(m.Cmd, len(payload), 1)
	}
	m.Seq = seq
	m.Success = payload[0] != 0
	return nil
}

// ZoomLevelMessage is the zoom level reported by the manual zoom ack
type ZoomLevelMessage struct {
	Seq   uint16
	Level float64
}

func (m *ZoomLevelMessage) command() command { return cmdManualZoom }
func (m *ZoomLevelMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 2 {
		return payloadSizeError(cmdManualZoom, len(payload), 2)
	}
	m.Seq = seq
	m.Level = float64(binary.LittleEndian.Uint16(payload)) / 10
	return nil
}

// CurrentZoomMessage is the absolute zoom level, transmitted as an
// integer byte plus a tenths byte.
type CurrentZoomMessage struct {
	Seq   uint16
	Level float64
}

func (m *CurrentZoomMessage) command() command { return cmdCurrentZoomValue }
func (m *CurrentZoomMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 2 {
		return payloadSizeError(cmdCurrentZoomValue, len(payload), 2)
	}
	m.Seq = seq
	m.Level = float64(payload[0]) + float64(payload[1])/10
	return nil
}

// SetAttitudeMessage echoes the attitude after an absolute angle
// request has been accepted.
type SetAttitudeMessage struct {
	Seq   uint16
	Yaw   float64
	Pitch float64
	Roll  float64
}

func (m *SetAttitudeMessage) command() command { return cmdSetGimbalAttitude }
func (m *SetAttitudeMessage) decode(seq uint16, payload []byte) error {
	m.Seq = seq
	// Some firmwares reply with an empty ack, newer ones echo
	// the three angles.
	if len(payload) >= 6 {
		m.Yaw = float64(int16(binary.LittleEndian.Uint16(payload[0:]))) / 10
		m.Pitch = float64(int16(binary.LittleEndian.Uint16(payload[2:]))) / 10
		m.Roll = float64(int16(binary.LittleEndian.Uint16(payload[4:]))) / 10
	}
	return nil
}

// TemperatureMessage is the thermal reading at a requested point,
// in degrees celsius.
type TemperatureMessage struct {
	Seq         uint16
	Temperature float64
	X           int
	Y           int
}

func (m *TemperatureMessage) command() command { return cmdTemperatureAtPoint }
func (m *TemperatureMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 6 {
		return payloadSizeError(cmdTemperatureAtPoint, len(payload), 6)
	}
	m.Seq = seq
	// hundredths of a degree
	m.Temperature = float64(binary.LittleEndian.Uint16(payload[0:])) / 100
	m.X = int(binary.LittleEndian.Uint16(payload[2:]))
	m.Y = int(binary.LittleEndian.Uint16(payload[4:]))
	return nil
}

// CodecSpecsMessage is the video encoder configuration of one of
// the camera streams.
type CodecSpecsMessage struct {
	Seq          uint16
	StreamType   uint8
	EncodingType uint8
	Width        int
	Height       int
	Bitrate      int // kbps
	Framerate    int
}

func (m *CodecSpecsMessage) command() command { return cmdRequestCodecSpecs }
func (m *CodecSpecsMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 9 {
		return payloadSizeError(cmdRequestCodecSpecs, len(payload), 9)
	}
	m.Seq = seq
	m.StreamType = payload[0]
	m.EncodingType = payload[1]
	m.Width = int(binary.LittleEndian.Uint16(payload[2:]))
	m.Height = int(binary.LittleEndian.Uint16(payload[4:]))
	m.Bitrate = int(binary.LittleEndian.Uint16(payload[6:]))
	m.Framerate = int(payload[8])
	return nil
}

// CodecSpecsAckMessage acknowledges a codec configuration change
type CodecSpecsAckMessage struct {
	Seq        uint16
	StreamType uint8
	Success    bool
}

func (m *CodecSpecsAckMessage) command() command { return cmdSendCodecSpecs }
func (m *CodecSpecsAckMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 2 {
		return payloadSizeError(cmdSendCodecSpecs, len(payload), 2)
	}
	m.Seq = seq
	m.StreamType = payload[0]
	m.Success = payload[1] != 0
	return nil
}

// ImageMode selects which sensors are shown on the main and sub
// streams of dual sensor cameras.
type ImageMode uint8

func (m ImageMode) String() string {
	switch m {
	case 0:
		return "Split Screen (Main: Zoom & Thermal. Sub: Wide Angle)"
	case 1:
		return "Split Screen (Main: Wide Angle & Thermal. Sub: Zoom)"
	case 2:
		return "Split Screen (Main: Zoom & Wide Angle. Sub: Thermal)"
	case 3:
		return "Single Image (Main: Zoom. Sub: Thermal)"
	case 4:
		return "Single Image (Main: Zoom. Sub: Wide Angle)"
	case 5:
		return "Single Image (Main: Wide Angle. Sub: Thermal)"
	case 6:
		return "Single Image (Main: Wide Angle. Sub: Zoom)"
	case 7:
		return "Single Image (Main: Thermal. Sub: Zoom)"
	case 8:
		return "Single Image (Main: Thermal. Sub: Wide Angle)"
	}
	return fmt.Sprintf("unknown image mode %d", uint8(m))
}

// ImageModeMessage reports the active image mode
type ImageModeMessage struct {
	Cmd  command
	Seq  uint16
	Mode ImageMode
}

func (m *ImageModeMessage) command() command { return m.Cmd }
func (m *ImageModeMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 1 {
		return payloadSizeError(m.Cmd, len(payload), 1)
	}
	m.Seq = seq
	m.Mode = ImageMode(payload[0])
	return nil
}

// DataStreamMessage acknowledges a data stream rate request
type DataStreamMessage struct {
	Seq      uint16
	DataType uint8
}

func (m *DataStreamMessage) command() command { return cmdSetDataStream }
func (m *DataStreamMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 1 {
		return payloadSizeError(cmdSetDataStream, len(payload), 1)
	}
	m.Seq = seq
	m.DataType = payload[0]
	return nil
}

// SoftRestartMessage reports which units accepted a reboot request
type SoftRestartMessage struct {
	Seq             uint16
	CameraRestarted bool
	GimbalRestarted bool
}

func (m *SoftRestartMessage) command() command { return cmdSoftRestart }
func (m *SoftRestartMessage) decode(seq uint16, payload []byte) error {
	if len(payload) < 2 {
		return payloadSizeError(cmdSoftRestart, len(payload), 2)
	}
	m.Seq = seq
	m.CameraRestarted = payload[0] != 0
	m.GimbalRestarted = payload[1] != 0
	return nil
}

func getMessage(cmd command) message {
	switch cmd {
	case cmdFirmwareVersion:
		return &FirmwareMessage{}
	case cmdHardwareID:
		return &HardwareIDMessage{}
	case cmdGimbalAttitude:
		return &AttitudeMessage{}
	case cmdGimbalInfo:
		return &GimbalInfoMessage{}
	case cmdFunctionFeedback:
		return &FunctionFeedbackMessage{}
	case cmdAutoFocus, cmdManualFocus, cmdGimbalSpeed, cmdCenter, cmdAbsoluteZoom:
		return &AckMessage{Cmd: cmd}
	case cmdManualZoom:
		return &ZoomLevelMessage{}
	case cmdCurrentZoomValue:
		return &CurrentZoomMessage{}
	case cmdSetGimbalAttitude:
		return &SetAttitudeMessage{}
	case cmdTemperatureAtPoint:
		return &TemperatureMessage{}
	case cmdRequestCodecSpecs:
		return &CodecSpecsMessage{}
	case cmdSendCodecSpecs:
		return &CodecSpecsAckMessage{}
	case cmdRequestImageMode, cmdSendImageMode:
		return &ImageModeMessage{Cmd: cmd}
	case cmdSetDataStream:
		return &DataStreamMessage{}
	case cmdSoftRestart:
		return &SoftRestartMessage{}
	}
	return nil
}
