//go:build !cgo

package midi

import "gitlab.com/gomidi/midi/v2/drivers"

func OpenDriver() (drivers.Driver, error) { return nil, ErrUnavailable }
