package patlite

import (
	"fmt"
	"sync"

	"github.com/mikey/kopi-bell/internal/core"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Light drives a 4-channel relay board wired to GPIO outputs
type Light struct {
	pins      map[core.Color]Pin
	activeLow bool
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

// Open initializes the hardware, claims one pin per color and drives every
// channel to off. Polarity decides which level means off.
func Open(hw Hardware, pinNames map[core.Color]string, activeLow bool, logger *zap.Logger) (*Light, error) {
	if err := hw.Init(); err != nil {
		return nil, err
	}

	pins := make(map[core.Color]Pin, len(core.Colors))
	for _, color := range core.Colors {
		name, ok := pinNames[color]
		if !ok {
			return nil, fmt.Errorf("no pin configured for %s channel", color)
		}
		pin, err := hw.Pin(name)
		if err != nil {
			return nil, err
		}
		pins[color] = pin
	}

	l := &Light{
		pins:      pins,
		activeLow: activeLow,
		logger:    logger,
	}
	if err := l.AllOff(); err != nil {
		return nil, fmt.Errorf("failed to reset signal light: %w", err)
	}

	logger.Info("Signal light initialized", zap.Bool("active_low", activeLow))
	return l, nil
}

// level returns the output level for the wanted state
func (l *Light) level(on bool) bool {
	return on != l.activeLow
}

func (l *Light) set(color core.Color, on bool) error {
	pin, ok := l.pins[color]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownColor, color)
	}
	if err := pin.Out(l.level(on)); err != nil {
		return fmt.Errorf("failed to switch %s channel: %w", color, err)
	}
	return nil
}

// On switches one channel on
func (l *Light) On(color core.Color) error {
	return l.set(color, true)
}

// Off switches one channel off
func (l *Light) Off(color core.Color) error {
	return l.set(color, false)
}

// AllOff switches every channel off, attempting all of them even if one fails
func (l *Light) AllOff() error {
	var err error
	for _, color := range core.Colors {
		err = multierr.Append(err, l.set(color, false))
	}
	return err
}

// Close switches every channel off and releases the pins. Only the first call
// does anything.
func (l *Light) Close() error {
	l.closeOnce.Do(func() {
		err := l.AllOff()
		for _, color := range core.Colors {
			if haltErr := l.pins[color].Halt(); haltErr != nil {
				err = multierr.Append(err, fmt.Errorf("failed to release %s channel: %w", color, haltErr))
			}
		}
		l.closeErr = err
		l.logger.Debug("Signal light released")
	})
	return l.closeErr
}

// Disabled is the light used when the patlite is switched off or missing.
// It never touches the hardware but still rejects unknown colors.
type Disabled struct{}

// On validates the color and does nothing else
func (Disabled) On(color core.Color) error { return checkColor(color) }

// Off validates the color and does nothing else
func (Disabled) Off(color core.Color) error { return checkColor(color) }

// AllOff does nothing
func (Disabled) AllOff() error { return nil }

// Close does nothing
func (Disabled) Close() error { return nil }

func checkColor(color core.Color) error {
	if !color.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownColor, color)
	}
	return nil
}
