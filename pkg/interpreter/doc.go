// Package interpreter executes Rui programs. A program runs as a pool of
// strands that are stepped one instruction at a time in repeated sweeps until
// the pool is empty. Execution is single-threaded and fully deterministic;
// the only effect that may block is a read through the Port.
package interpreter
