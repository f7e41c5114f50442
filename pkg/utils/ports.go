package utils

import (
	"errors"
	"net"
)

// UnusedTCP4Port returns a loopback TCP port that was free at the time of the call.
func UnusedTCP4Port() (uint16, error) {
	for i := 0; i < 10; i++ {
		l, err := net.Listen("tcp4", "127.0.0.1:0")
		if err != nil {
			continue
		}
		port := l.Addr().(*net.TCPAddr).Port
		if err := l.Close(); err != nil {
			return 0, err
		}
		return uint16(port), nil
	}
	return 0, errors.New("could not find unused TCP port")
}
