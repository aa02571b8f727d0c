package patlite

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when the GPIO registry has no pin by that name
var ErrPinNotFound = errors.New("gpio pin not found")

// Hardware is the GPIO access layer
type Hardware interface {
	// Init loads the platform drivers
	Init() error
	// Pin looks up an output pin by name, e.g. "GPIO17"
	Pin(name string) (Pin, error)
}

// Pin is one digital output line
type Pin interface {
	Out(high bool) error
	Halt() error
}

// Periph returns the periph.io GPIO access layer
func Periph() Hardware {
	return periphHardware{}
}

type periphHardware struct{}

func (periphHardware) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph host drivers: %w", err)
	}
	return nil
}

func (periphHardware) Pin(name string) (Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return periphPin{pin: p}, nil
}

type periphPin struct {
	pin gpio.PinIO
}

func (p periphPin) Out(high bool) error {
	return p.pin.Out(gpio.Level(high))
}

func (p periphPin) Halt() error {
	return p.pin.Halt()
}
