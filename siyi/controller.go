package siyi

import (
	"context"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

const rotationPeriod = 100 * time.Millisecond

// RotateOptions tunes the closed loop rotation. Zero values fall
// back to the defaults.
type RotateOptions struct {
	// Tolerance is the per axis error, in degrees, at which the
	// target counts as reached. Default 1.
	Tolerance float64
	// Gain is the proportional gain mapping degrees of error to
	// speed units. Default 4.
	Gain float64
}

func (o RotateOptions) withDefaults() RotateOptions {
	if o.Tolerance == 0 {
		o.Tolerance = 1
	}
	if o.Gain == 0 {
		o.Gain = 4
	}
	return o
}

// RotateTo drives the gimbal to the given absolute yaw and pitch,
// in degrees, with a proportional speed loop over the continuously
// refreshed attitude. Targets outside the camera model's limits are
// clamped to the nearest limit. The loop runs until both axis
// errors are within the tolerance or ctx is done; either way a
// final zero speed command is sent, so the gimbal is never left
// moving. The model must have been resolved before calling.
func (g *Gimbal) RotateTo(ctx context.Context, yawDeg, pitchDeg float64, opts RotateOptions) error {
	model := g.state.Hardware().Model
	limits, ok := model.Limits()
	if !ok {
		return ErrUnknownModel
	}
	if c := limits.ClampYaw(yawDeg); c != yawDeg {
		log.Warnf("target yaw %g outside %v range, clamping to %g", yawDeg, model, c)
		yawDeg = c
	}
	if c := limits.ClampPitch(pitchDeg); c != pitchDeg {
		log.Warnf("target pitch %g outside %v range, clamping to %g", pitchDeg, model, c)
		pitchDeg = c
	}
	opts = opts.withDefaults()

	lastSeq := -1
	for {
		if err := ctx.Err(); err != nil {
			g.RequestGimbalSpeed(0, 0)
			return err
		}
		if err := g.RequestGimbalAttitude(); err != nil {
			return err
		}
		att := g.state.Attitude()
		if int(att.Seq) == lastSeq {
			// Missed sample. Hold still rather than act on a
			// stale attitude.
			log.Info("did not get a new attitude message")
			if err := g.RequestGimbalSpeed(0, 0); err != nil {
				return err
			}
			if err := wait(ctx, rotationPeriod); err != nil {
				g.RequestGimbalSpeed(0, 0)
				return err
			}
			continue
		}
		lastSeq = int(att.Seq)

		// The device reports yaw errors with the opposite sign of
		// pitch errors, confirmed against hardware.
		yawErr := -yawDeg + att.Yaw
		pitchErr := pitchDeg - att.Pitch
		log.Debugf("yaw error %.1f, pitch error %.1f", yawErr, pitchErr)

		if math.Abs(yawErr) <= opts.Tolerance && math.Abs(pitchErr) <= opts.Tolerance {
			if err := g.RequestGimbalSpeed(0, 0); err != nil {
				return err
			}
			log.Info("goal rotation is reached")
			return nil
		}

		yawSpeed := clampInt(int(opts.Gain*yawErr), -100, 100)
		pitchSpeed := clampInt(int(opts.Gain*pitchErr), -100, 100)
		if err := g.RequestGimbalSpeed(yawSpeed, pitchSpeed); err != nil {
			return err
		}
		if err := wait(ctx, rotationPeriod); err != nil {
			g.RequestGimbalSpeed(0, 0)
			return err
		}
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
