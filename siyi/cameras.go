package siyi

import "fmt"

// CameraModel identifies the camera family behind the gimbal. It is
// resolved once, from the first two characters of the hardware ID,
// and gates the per model angle limits and stream layouts.
type CameraModel int

const (
	// ModelUnknown is reported until the hardware ID has been
	// resolved or when the ID doesn't match a known camera
	ModelUnknown CameraModel = iota
	// ModelZR10 is the SIYI ZR10 10x hybrid zoom gimbal
	ModelZR10
	// ModelZR30 is the SIYI ZR30 30x hybrid zoom gimbal
	ModelZR30
	// ModelA8Mini is the SIYI A8 mini gimbal
	ModelA8Mini
	// ModelA2Mini is the SIYI A2 mini FPV gimbal
	ModelA2Mini
	// ModelZT6 is the SIYI ZT6 dual sensor (zoom + thermal) gimbal
	ModelZT6
	// ModelZT30 is the SIYI ZT30 four sensor gimbal
	ModelZT30
)

// AngleLimits is the supported absolute angle range of a camera
// model, in degrees.
type AngleLimits struct {
	MaxYaw   float64
	MinYaw   float64
	MaxPitch float64
	MinPitch float64
}

// ClampYaw returns the yaw angle clamped to the supported range
func (l AngleLimits) ClampYaw(deg float64) float64 {
	if deg > l.MaxYaw {
		return l.MaxYaw
	}
	if deg < l.MinYaw {
		return l.MinYaw
	}
	return deg
}

// ClampPitch returns the pitch angle clamped to the supported range
func (l AngleLimits) ClampPitch(deg float64) float64 {
	if deg > l.MaxPitch {
		return l.MaxPitch
	}
	if deg < l.MinPitch {
		return l.MinPitch
	}
	return deg
}

type cameraSpec struct {
	name     string
	limits   AngleLimits
	hasTherm bool
	mainRTSP string
	subRTSP  string
}

var cameraSpecs = map[CameraModel]cameraSpec{
	ModelZR10: {
		name:     "ZR10",
		limits:   AngleLimits{MaxYaw: 135, MinYaw: -135, MaxPitch: 25, MinPitch: -90},
		mainRTSP: "rtsp://%s:8554/main.264",
	},
	ModelZR30: {
		name:     "ZR30",
		limits:   AngleLimits{MaxYaw: 270, MinYaw: -270, MaxPitch: 25, MinPitch: -90},
		mainRTSP: "rtsp://%s:8554/video1",
		subRTSP:  "rtsp://%s:8554/video2",
	},
	ModelA8Mini: {
		name:     "A8 mini",
		limits:   AngleLimits{MaxYaw: 135, MinYaw: -135, MaxPitch: 25, MinPitch: -90},
		mainRTSP: "rtsp://%s:8554/main.264",
	},
	ModelA2Mini: {
		name:   "A2 mini",
		limits: AngleLimits{MaxYaw: 160, MinYaw: -160, MaxPitch: 25, MinPitch: -90},
	},
	ModelZT6: {
		name:     "ZT6",
		limits:   AngleLimits{MaxYaw: 135, MinYaw: -135, MaxPitch: 25, MinPitch: -90},
		hasTherm: true,
		mainRTSP: "rtsp://%s:8554/video1",
		subRTSP:  "rtsp://%s:8554/video2",
	},
	ModelZT30: {
		name:     "ZT30",
		limits:   AngleLimits{MaxYaw: 270, MinYaw: -270, MaxPitch: 25, MinPitch: -90},
		hasTherm: true,
		mainRTSP: "rtsp://%s:8554/video1",
		subRTSP:  "rtsp://%s:8554/video2",
	},
}

// The first two hardware ID characters select the model
var cameraIDs = map[string]CameraModel{
	"6B": ModelZR10,
	"73": ModelA8Mini,
	"75": ModelA2Mini,
	"78": ModelZR30,
	"7A": ModelZT30,
	"83": ModelZT6,
}

func cameraModelForID(hwID string) CameraModel {
	if len(hwID) < 2 {
		return ModelUnknown
	}
	return cameraIDs[hwID[:2]]
}

func (m CameraModel) String() string {
	if spec, ok := cameraSpecs[m]; ok {
		return spec.name
	}
	return fmt.Sprintf("unknown camera model %d", int(m))
}

// Limits returns the supported angle range for the model. ok is
// false for unknown models, which have no published limits.
func (m CameraModel) Limits() (limits AngleLimits, ok bool) {
	spec, ok := cameraSpecs[m]
	return spec.limits, ok
}

// HasThermal reports whether the model carries a thermal sensor
// and therefore supports image mode selection.
func (m CameraModel) HasThermal() bool {
	return cameraSpecs[m].hasTherm
}

// StreamURLs holds the RTSP URLs for each sensor feed. Entries are
// empty when the model doesn't expose that feed.
type StreamURLs struct {
	RGB     string
	RGBWide string
	Thermal string
}

// streamURLs maps the model's fixed RTSP layout (plus the active
// image mode for dual sensor cameras) to per sensor URLs.
func (m CameraModel) streamURLs(host string, mode ImageMode) (StreamURLs, bool) {
	spec, ok := cameraSpecs[m]
	if !ok || spec.mainRTSP == "" {
		return StreamURLs{}, false
	}
	main := fmt.Sprintf(spec.mainRTSP, host)
	if !spec.hasTherm {
		return StreamURLs{RGB: main}, true
	}
	sub := fmt.Sprintf(spec.subRTSP, host)
	switch mode {
	case 0, 1:
		// Split screens put thermal on the main stream
		return StreamURLs{RGB: main, Thermal: main}, true
	case 2, 3, 5:
		return StreamURLs{RGB: main, Thermal: sub}, true
	case 4:
		return StreamURLs{RGB: main, RGBWide: sub}, true
	case 6:
		return StreamURLs{RGBWide: main, RGB: sub}, true
	case 7:
		return StreamURLs{Thermal: main, RGB: sub}, true
	case 8:
		return StreamURLs{Thermal: main, RGBWide: sub}, true
	}
	// Unknown mode, fall back to the zoom/thermal split
	return StreamURLs{RGB: main, Thermal: sub}, true
}
