package siyi

import "fmt"

// Frames start with this two byte marker. Everything after it
// is little endian, including the trailing CRC16.
var syncMarker = [2]byte{0x55, 0x66}

const (
	// sync(2) + ctrl(1) + len(2) + seq(2) + cmd(1) + crc16(2)
	headerSize   = 8
	minFrameSize = 10

	// ctrl byte for outgoing requests (ack requested)
	ctrlNeedAck = 0x01
)

type command byte

const (
	cmdFirmwareVersion    command = 0x01
	cmdHardwareID         command = 0x02
	cmdAutoFocus          command = 0x04
	cmdManualZoom         command = 0x05
	cmdManualFocus        command = 0x06
	cmdGimbalSpeed        command = 0x07
	cmdCenter             command = 0x08
	cmdGimbalInfo         command = 0x0a
	cmdFunctionFeedback   command = 0x0b
	cmdPhotoVideo         command = 0x0c
	cmdGimbalAttitude     command = 0x0d
	cmdSetGimbalAttitude  command = 0x0e
	cmdAbsoluteZoom       command = 0x0f
	cmdRequestImageMode   command = 0x10
	cmdSendImageMode      command = 0x11
	cmdTemperatureAtPoint command = 0x12
	cmdCurrentZoomValue   command = 0x18
	cmdRequestCodecSpecs  command = 0x20
	cmdSendCodecSpecs     command = 0x21
	cmdSetDataStream      command = 0x25
	cmdSoftRestart        command = 0x80
)

// func_type values for cmdPhotoVideo
const (
	photoVideoTakePhoto    = 0x00
	photoVideoToggleRecord = 0x02
	photoVideoLockMode     = 0x03
	photoVideoFollowMode   = 0x04
	photoVideoFPVMode      = 0x05
)

// data stream types for cmdSetDataStream
const (
	dataStreamAttitude = 0x01
	dataStreamLaser    = 0x02
)

func (c command) String() string {
	switch c {
	case cmdFirmwareVersion:
		return "FIRMWARE_VERSION"
	case cmdHardwareID:
		return "HARDWARE_ID"
	case cmdAutoFocus:
		return "AUTO_FOCUS"
	case cmdManualZoom:
		return "MANUAL_ZOOM"
	case cmdManualFocus:
		return "MANUAL_FOCUS"
	case cmdGimbalSpeed:
		return "GIMBAL_SPEED"
	case cmdCenter:
		return "CENTER"
	case cmdGimbalInfo:
		return "GIMBAL_INFO"
	case cmdFunctionFeedback:
		return "FUNCTION_FEEDBACK"
	case cmdPhotoVideo:
		return "PHOTO_VIDEO"
	case cmdGimbalAttitude:
		return "GIMBAL_ATTITUDE"
	case cmdSetGimbalAttitude:
		return "SET_GIMBAL_ATTITUDE"
	case cmdAbsoluteZoom:
		return "ABSOLUTE_ZOOM"
	case cmdRequestImageMode:
		return "REQUEST_IMAGE_MODE"
	case cmdSendImageMode:
		return "SEND_IMAGE_MODE"
	case cmdTemperatureAtPoint:
		return "TEMPERATURE_AT_POINT"
	case cmdCurrentZoomValue:
		return "CURRENT_ZOOM_VALUE"
	case cmdRequestCodecSpecs:
		return "REQUEST_CODEC_SPECS"
	case cmdSendCodecSpecs:
		return "SEND_CODEC_SPECS"
	case cmdSetDataStream:
		return "SET_DATA_STREAM"
	case cmdSoftRestart:
		return "SOFT_RESTART"
	}
	return fmt.Sprintf("unknown command 0x%02x", byte(c))
}

type frame struct {
	Cmd     command
	Seq     uint16
	Payload []byte
}
