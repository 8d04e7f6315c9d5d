package siyi

import "sync"

// stateStore keeps the most recent decoded message of every type,
// each tagged with the sequence number it arrived with. The receive
// loop is the only writer; everything else reads snapshots.
type stateStore struct {
	mu sync.RWMutex

	firmware    FirmwareMessage
	hardware    HardwareIDMessage
	attitude    AttitudeMessage
	info        GimbalInfoMessage
	feedback    FunctionFeedbackMessage
	zoomLevel   ZoomLevelMessage
	currentZoom CurrentZoomMessage
	setAttitude SetAttitudeMessage
	temperature TemperatureMessage
	codecSpecs  CodecSpecsMessage
	codecAck    CodecSpecsAckMessage
	imageMode   ImageModeMessage
	dataStream  DataStreamMessage
	softRestart SoftRestartMessage
	acks        map[command]AckMessage
}

func newStateStore() *stateStore {
	return &stateStore{acks: make(map[command]AckMessage)}
}

// update stores a fully decoded message. Partially decoded
// messages never reach here, so a slot is either untouched or
// holds a complete record.
func (s *stateStore) update(msg message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m := msg.(type) {
	case *FirmwareMessage:
		s.firmware = *m
	case *HardwareIDMessage:
		s.hardware = *m
	case *AttitudeMessage:
		s.attitude = *m
	case *GimbalInfoMessage:
		s.info = *m
	case *FunctionFeedbackMessage:
		s.feedback = *m
	case *ZoomLevelMessage:
		s.zoomLevel = *m
	case *CurrentZoomMessage:
		s.currentZoom = *m
	case *SetAttitudeMessage:
		s.setAttitude = *m
	case *TemperatureMessage:
		s.temperature = *m
	case *CodecSpecsMessage:
		s.codecSpecs = *m
	case *CodecSpecsAckMessage:
		s.codecAck = *m
	case *ImageModeMessage:
		s.imageMode = *m
	case *DataStreamMessage:
		s.dataStream = *m
	case *SoftRestartMessage:
		s.softRestart = *m
	case *AckMessage:
		s.acks[m.Cmd] = *m
	}
}

// reset returns every slot to its initial value. Called on
// disconnect so a reconnect never observes stale device state.
func (s *stateStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firmware = FirmwareMessage{}
	s.hardware = HardwareIDMessage{}
	s.attitude = AttitudeMessage{}
	s.info = GimbalInfoMessage{}
	s.feedback = FunctionFeedbackMessage{}
	s.zoomLevel = ZoomLevelMessage{}
	s.currentZoom = CurrentZoomMessage{}
	s.setAttitude = SetAttitudeMessage{}
	s.temperature = TemperatureMessage{}
	s.codecSpecs = CodecSpecsMessage{}
	s.codecAck = CodecSpecsAckMessage{}
	s.imageMode = ImageModeMessage{}
	s.dataStream = DataStreamMessage{}
	s.softRestart = SoftRestartMessage{}
	s.acks = make(map[command]AckMessage)
}

func (s *stateStore) Firmware() FirmwareMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firmware
}

func (s *stateStore) Hardware() HardwareIDMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hardware
}

func (s *stateStore) Attitude() AttitudeMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attitude
}

func (s *stateStore) Info() GimbalInfoMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

func (s *stateStore) Feedback() FunctionFeedbackMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feedback
}

func (s *stateStore) ZoomLevel() ZoomLevelMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoomLevel
}

func (s *stateStore) CurrentZoom() CurrentZoomMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentZoom
}

func (s *stateStore) SetAttitude() SetAttitudeMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setAttitude
}

func (s *stateStore) Temperature() TemperatureMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temperature
}

func (s *stateStore) CodecSpecs() CodecSpecsMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codecSpecs
}

func (s *stateStore) CodecAck() CodecSpecsAckMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codecAck
}

func (s *stateStore) ImageMode() ImageModeMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imageMode
}

func (s *stateStore) DataStream() DataStreamMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataStream
}

func (s *stateStore) SoftRestart() SoftRestartMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.softRestart
}

func (s *stateStore) Ack(cmd command) AckMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acks[cmd]
}
