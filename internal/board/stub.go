//go:build !linux && !rp2040

package board

import (
	"errors"
	"time"
)

// RealBoard is not available on this platform.
type RealBoard struct{}

var _ Board = (*RealBoard)(nil)

// NewRealBoard returns an error on unsupported platforms.
func NewRealBoard(cfg Config) (*RealBoard, error) {
	return nil, errors.New("board: not supported on this platform (requires Linux or rp2040)")
}

func (b *RealBoard) ReadSensors() ([NumZones]bool, error) {
	return [NumZones]bool{}, errors.New("board: not supported")
}

func (b *RealBoard) ReadButton() (bool, error) {
	return false, errors.New("board: not supported")
}

func (b *RealBoard) SetRelay(zone int, on bool) error {
	return errors.New("board: not supported")
}

func (b *RealBoard) SetIndicator(red, green, blue uint8) error {
	return errors.New("board: not supported")
}

func (b *RealBoard) Idle(d time.Duration) {}

func (b *RealBoard) Close() error {
	return nil
}
