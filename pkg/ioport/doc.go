// Package ioport provides interpreter ports: a console port bound to the
// process's standard streams and an in-memory scripted port.
package ioport
