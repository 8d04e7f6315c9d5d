package remote

import "encoding/json"

// Message types
const (
	TypePing      = "ping"
	TypePong      = "pong"
	TypeStatus    = "status"
	TypeTelemetry = "telemetry"
	TypeSpeed     = "speed"
	TypeAngles    = "angles"
	TypeCenter    = "center"
	TypePhoto     = "photo"
	TypeRecord    = "record"
	TypeZoom      = "zoom"
	TypeMode      = "mode"
	TypeError     = "error"
)

// Error codes
const (
	ErrGimbalDisconnected = "GIMBAL_DISCONNECTED"
	ErrCommand            = "COMMAND_ERROR"
	ErrInvalidMessage     = "INVALID_MESSAGE"
)

// Message is the envelope for all WebSocket messages
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PingPayload for ping messages
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// PongPayload for pong messages
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// StatusPayload describes the gimbal connection
type StatusPayload struct {
	Connected  bool   `json:"connected"`
	Model      string `json:"model"`
	HardwareID string `json:"hardware_id"`
	Firmware   string `json:"firmware"`
}

// TelemetryPayload is pushed periodically to every client
type TelemetryPayload struct {
	Yaw       float64 `json:"yaw"`
	Pitch     float64 `json:"pitch"`
	Roll      float64 `json:"roll"`
	ZoomLevel float64 `json:"zoom_level"`
	Recording string  `json:"recording"`
	Mode      string  `json:"mode"`
}

// SpeedPayload commands yaw/pitch rotation speeds (-100..100)
type SpeedPayload struct {
	Yaw   int `json:"yaw"`
	Pitch int `json:"pitch"`
}

// AnglesPayload commands absolute angles in degrees
type AnglesPayload struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// ZoomPayload commands the zoom: direction "in", "out" or "hold",
// or an absolute level when Level is > 0
type ZoomPayload struct {
	Direction string  `json:"direction,omitempty"`
	Level     float64 `json:"level,omitempty"`
}

// ModePayload selects the motion mode: "fpv", "lock" or "follow"
type ModePayload struct {
	Mode string `json:"mode"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a message with the given type and payload
func NewMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}

// ParsePayload unmarshals the payload into the given struct
func (m *Message) ParsePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}
