package siyi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCameraModelForID(t *testing.T) {
	cases := []struct {
		id    string
		model CameraModel
	}{
		{"6B12345678", ModelZR10},
		{"7312345678", ModelA8Mini},
		{"7512345678", ModelA2Mini},
		{"7812345678", ModelZR30},
		{"7A12345678", ModelZT30},
		{"8312345678", ModelZT6},
		{"ZZ12345678", ModelUnknown},
		{"6", ModelUnknown},
		{"", ModelUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.model, cameraModelForID(c.id), "id %q", c.id)
	}
}

func TestAngleLimitsClamp(t *testing.T) {
	limits, ok := ModelA8Mini.Limits()
	if !ok {
		t.Fatal("A8 mini should have published limits")
	}
	assert.Equal(t, 135.0, limits.ClampYaw(200))
	assert.Equal(t, -135.0, limits.ClampYaw(-200))
	assert.Equal(t, 90.0, limits.ClampYaw(90))
	assert.Equal(t, 25.0, limits.ClampPitch(30))
	assert.Equal(t, -90.0, limits.ClampPitch(-120))
	assert.Equal(t, -45.0, limits.ClampPitch(-45))

	_, ok = ModelUnknown.Limits()
	assert.False(t, ok)
}

func TestExtendedYawModels(t *testing.T) {
	for _, model := range []CameraModel{ModelZR30, ModelZT30} {
		limits, ok := model.Limits()
		if !ok {
			t.Fatalf("%v should have published limits", model)
		}
		assert.Equal(t, 270.0, limits.MaxYaw)
		assert.Equal(t, -270.0, limits.MinYaw)
	}
}

func TestHasThermal(t *testing.T) {
	assert.True(t, ModelZT6.HasThermal())
	assert.True(t, ModelZT30.HasThermal())
	assert.False(t, ModelZR10.HasThermal())
	assert.False(t, ModelA8Mini.HasThermal())
	assert.False(t, ModelUnknown.HasThermal())
}

func TestStreamURLsSingleSensor(t *testing.T) {
	urls, ok := ModelA8Mini.streamURLs("192.168.144.25", 0)
	if !ok {
		t.Fatal("A8 mini should expose a stream")
	}
	assert.Equal(t, "rtsp://192.168.144.25:8554/main.264", urls.RGB)
	assert.Empty(t, urls.RGBWide)
	assert.Empty(t, urls.Thermal)

	// The A2 mini sends video over HDMI only
	_, ok = ModelA2Mini.streamURLs("192.168.144.25", 0)
	assert.False(t, ok)

	_, ok = ModelUnknown.streamURLs("192.168.144.25", 0)
	assert.False(t, ok)
}

func TestStreamURLsDualSensor(t *testing.T) {
	main := "rtsp://cam:8554/video1"
	sub := "rtsp://cam:8554/video2"

	cases := []struct {
		mode ImageMode
		want StreamURLs
	}{
		{0, StreamURLs{RGB: main, Thermal: main}},
		{1, StreamURLs{RGB: main, Thermal: main}},
		{2, StreamURLs{RGB: main, Thermal: sub}},
		{3, StreamURLs{RGB: main, Thermal: sub}},
		{4, StreamURLs{RGB: main, RGBWide: sub}},
		{5, StreamURLs{RGB: main, Thermal: sub}},
		{6, StreamURLs{RGBWide: main, RGB: sub}},
		{7, StreamURLs{Thermal: main, RGB: sub}},
		{8, StreamURLs{Thermal: main, RGBWide: sub}},
		{42, StreamURLs{RGB: main, Thermal: sub}},
	}
	for _, c := range cases {
		urls, ok := ModelZT6.streamURLs("cam", c.mode)
		if !ok {
			t.Fatalf("mode %d: ZT6 should expose streams", c.mode)
		}
		assert.Equal(t, c.want, urls, "mode %d", c.mode)
	}
}

func TestCameraModelString(t *testing.T) {
	assert.Equal(t, "ZR10", ModelZR10.String())
	assert.Equal(t, "A8 mini", ModelA8Mini.String())
	assert.Contains(t, ModelUnknown.String(), "unknown")
}
