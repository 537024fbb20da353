//go:build cgo

package midi

import (
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// OpenDriver opens the system MIDI driver.
func OpenDriver() (drivers.Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	return drv, nil
}
