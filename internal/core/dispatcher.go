package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultAlertCue is the short chime played before every voice cue
const DefaultAlertCue = "chime.wav"

// DispatchTiming holds the fixed waits of a dispatch
type DispatchTiming struct {
	// SoundDelay separates the start of the alert cue from the voice cue
	SoundDelay time.Duration
	// Hold keeps the signal light on after the broadcast
	Hold time.Duration
}

// Dispatcher fans one event out to the light, the speaker and the chat channel
type Dispatcher struct {
	light       SignalLight
	sound       SoundPlayer
	broadcaster Broadcaster
	actions     ActionTable
	alertCue    string
	timing      DispatchTiming
	clock       clockwork.Clock
	logger      *zap.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(
	light SignalLight,
	sound SoundPlayer,
	broadcaster Broadcaster,
	actions ActionTable,
	alertCue string,
	timing DispatchTiming,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		light:       light,
		sound:       sound,
		broadcaster: broadcaster,
		actions:     actions,
		alertCue:    alertCue,
		timing:      timing,
		clock:       clock,
		logger:      logger,
	}
}

// Action returns the channel action mapped to an event
func (d *Dispatcher) Action(event Event) (ChannelAction, bool) {
	action, ok := d.actions[event]
	return action, ok
}

// Dispatch runs every output for the event: light on, alert and voice cue,
// broadcast, hold, light off. The light is switched off on every return path
// once it may have been switched on. Light and sound failures are only
// logged; a broadcast failure is returned after the light is off.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) (err error) {
	action, ok := d.actions[event]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAction, event)
	}

	logger := d.logger.With(zap.Stringer("event", event))
	logger.Info("Dispatching notification", zap.String("color", string(action.Color)))

	if action.Color != "" {
		defer func() {
			if offErr := d.light.AllOff(); offErr != nil {
				logger.Error("Failed to switch signal light off", zap.Error(offErr))
				err = multierr.Append(err, fmt.Errorf("signal light off: %w", offErr))
			}
		}()

		if err := d.light.On(action.Color); err != nil {
			if errors.Is(err, ErrUnknownColor) {
				return fmt.Errorf("signal light on: %w", err)
			}
			logger.Warn("Failed to switch signal light on", zap.Error(err))
		}
	}

	if err := d.playCues(ctx, action, logger); err != nil {
		return err
	}

	if err := d.broadcaster.Broadcast(ctx, action.Text); err != nil {
		logger.Error("Broadcast failed", zap.Error(err))
		return err
	}
	logger.Info("Broadcast sent")

	if action.Color != "" {
		if err := d.wait(ctx, d.timing.Hold); err != nil {
			return err
		}
	}

	return nil
}

// playCues starts the alert cue, waits the configured delay and plays the
// voice cue. Only a cancelled context is returned as an error.
func (d *Dispatcher) playCues(ctx context.Context, action ChannelAction, logger *zap.Logger) error {
	if d.alertCue != "" {
		if err := d.sound.Start(d.alertCue); err != nil {
			logger.Warn("Failed to play alert cue", zap.String("cue", d.alertCue), zap.Error(err))
		}
	}

	if action.VoiceCue == "" {
		return nil
	}

	if err := d.wait(ctx, d.timing.SoundDelay); err != nil {
		return err
	}

	if err := d.sound.Play(ctx, action.VoiceCue); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Failed to play voice cue", zap.String("cue", action.VoiceCue), zap.Error(err))
	}
	return nil
}

func (d *Dispatcher) wait(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.clock.After(dur):
		return nil
	}
}
