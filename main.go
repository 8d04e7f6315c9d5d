package main // import "gimbalctl"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"gimbalctl/internal/remote"
	"gimbalctl/internal/stream"
	"gimbalctl/siyi"
)

func main() {
	addr := flag.String("addr", siyi.DefaultAddress, "gimbal camera UDP host:port")
	debug := flag.Bool("debug", false, "enable debug logging")
	listen := flag.String("listen", "", "serve the WebSocket remote control on this address")
	probeStreams := flag.Bool("probe-streams", false, "verify the camera RTSP streams answer")
	rotate := flag.String("rotate", "", "rotate to \"yaw,pitch\" degrees and exit")
	center := flag.Bool("center", false, "center the gimbal")
	photo := flag.Bool("photo", false, "take a photo")
	minFirmware := flag.String("min-firmware", "", "warn when the gimbal firmware is older than this version")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	gimbal := siyi.New(siyi.Config{Address: *addr})
	if err := gimbal.Connect(); err != nil {
		log.Fatalf("could not connect: %v", err)
	}
	defer gimbal.Disconnect()

	fmt.Printf("Camera model:     %v\n", gimbal.CameraModel())
	fmt.Printf("Hardware ID:      %s\n", gimbal.HardwareID())
	fmt.Printf("Firmware version: %s\n", gimbal.FirmwareVersion())
	att := gimbal.Attitude()
	fmt.Printf("Attitude:         yaw %.1f pitch %.1f roll %.1f\n", att.Yaw, att.Pitch, att.Roll)
	fmt.Printf("Zoom level:       %.1f\n", gimbal.CurrentZoomLevel())
	info := gimbal.GimbalInfo()
	fmt.Printf("Recording:        %v, motion mode %v\n", info.Recording, info.MotionMode)

	if *minFirmware != "" {
		ok, err := gimbal.HasMinimumFirmware(*minFirmware)
		switch {
		case err != nil:
			log.Errorf("firmware check failed: %v", err)
		case !ok:
			log.Warnf("gimbal firmware is older than %s, consider upgrading", *minFirmware)
		}
	}

	if *center {
		if err := gimbal.RequestCenter(); err != nil {
			log.Fatalf("centering failed: %v", err)
		}
		time.Sleep(time.Second)
	}

	if *photo {
		if err := gimbal.RequestPhoto(); err != nil {
			log.Fatalf("photo failed: %v", err)
		}
		time.Sleep(time.Second)
		if err := gimbal.RequestFunctionFeedback(); err == nil {
			time.Sleep(500 * time.Millisecond)
			fmt.Printf("Photo feedback:   %d\n", gimbal.FunctionFeedback().Code)
		}
	}

	if *rotate != "" {
		var yaw, pitch float64
		if _, err := fmt.Sscanf(*rotate, "%f,%f", &yaw, &pitch); err != nil {
			log.Fatalf("invalid -rotate value %q, expecting \"yaw,pitch\"", *rotate)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := gimbal.RotateTo(ctx, yaw, pitch, siyi.RotateOptions{}); err != nil {
			log.Fatalf("rotation failed: %v", err)
		}
	}

	if *probeStreams {
		urls, err := gimbal.StreamURLs()
		if err != nil {
			log.Fatalf("could not resolve stream URLs: %v", err)
		}
		for name, url := range map[string]string{
			"rgb": urls.RGB, "rgb_wide": urls.RGBWide, "thermal": urls.Thermal,
		} {
			if url == "" {
				continue
			}
			report, err := stream.Probe(url, 3*time.Second)
			if err != nil {
				log.Errorf("%s stream probe failed: %v", name, err)
				continue
			}
			fmt.Printf("%-8s %s: %s, %d RTP packets in 3s\n", name, report.URL, report.Format, report.Packets)
		}
	}

	if *listen != "" {
		srv := remote.New(gimbal)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			log.Info("shutting down")
			srv.Stop()
			gimbal.Disconnect()
			os.Exit(0)
		}()
		if err := srv.ListenAndServe(*listen); err != nil {
			log.Fatalf("remote control server failed: %v", err)
		}
	}
}
