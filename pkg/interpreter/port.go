package interpreter

import "errors"

// Port is the I/O boundary of the interpreter. Read supplies the value for
// the 'r' instruction and Write receives the value of every 'w'. Any error
// either returns aborts the run as an IOFailure.
type Port interface {
	Read() (int64, error)
	Write(value int64) error
}

var errNoPort = errors.New("no i/o port configured")

type nullPort struct{}

func (nullPort) Read() (int64, error) { return 0, errNoPort }

func (nullPort) Write(int64) error { return errNoPort }
