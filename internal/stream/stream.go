// Package stream verifies that a camera's RTSP feeds are alive by
// connecting, setting up the video track and counting RTP packets
// for a short window.
package stream

import (
	"fmt"
	"time"

	"github.com/bluenviron/gortsplib/v4"
	"github.com/bluenviron/gortsplib/v4/pkg/base"
	"github.com/bluenviron/gortsplib/v4/pkg/description"
	"github.com/bluenviron/gortsplib/v4/pkg/format"
	"github.com/pion/rtp"
	log "github.com/sirupsen/logrus"
)

// Report is the result of probing one RTSP URL
type Report struct {
	URL     string
	Format  string
	Packets int
}

// Probe connects to rtspURL, plays the video track and counts the
// RTP packets received within window.
func Probe(rtspURL string, window time.Duration) (*Report, error) {
	u, err := base.ParseURL(rtspURL)
	if err != nil {
		return nil, err
	}

	client := &gortsplib.Client{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		OnDecodeError: func(err error) {
			log.Warnf("stream decode error: %v", err)
		},
	}
	if err := client.Start(u.Scheme, u.Host); err != nil {
		return nil, err
	}
	defer client.Close()

	desc, _, err := client.Describe(u)
	if err != nil {
		return nil, err
	}

	videoMedia, videoFormat := findVideoTrack(desc)
	if videoFormat == nil {
		return nil, fmt.Errorf("no video track at %s", rtspURL)
	}

	if _, err := client.Setup(desc.BaseURL, videoMedia, 0, 0); err != nil {
		return nil, err
	}

	packets := make(chan struct{}, 1024)
	client.OnPacketRTPAny(func(media *description.Media, forma format.Format, pkt *rtp.Packet) {
		select {
		case packets <- struct{}{}:
		default:
		}
	})

	if _, err := client.Play(nil); err != nil {
		return nil, err
	}

	report := &Report{
		URL:    rtspURL,
		Format: videoFormat.Codec(),
	}
	deadline := time.After(window)
	for {
		select {
		case <-packets:
			report.Packets++
		case <-deadline:
			return report, nil
		}
	}
}

func findVideoTrack(desc *description.Session) (*description.Media, format.Format) {
	for _, media := range desc.Medias {
		for _, forma := range media.Formats {
			switch forma.(type) {
			case *format.H264, *format.H265:
				return media, forma
			}
		}
	}
	for _, media := range desc.Medias {
		if media.Type == description.MediaTypeVideo && len(media.Formats) > 0 {
			return media, media.Formats[0]
		}
	}
	return nil, nil
}
