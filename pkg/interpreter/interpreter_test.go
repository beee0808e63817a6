package interpreter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/LyricLy/yaiba/pkg/program"
	"github.com/LyricLy/yaiba/pkg/runtime"
)

type recordingPort struct {
	inputs  []int64
	outputs []int64
	readErr error
}

func (p *recordingPort) Read() (int64, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.inputs) == 0 {
		return 0, errors.New("no input")
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *recordingPort) Write(value int64) error {
	p.outputs = append(p.outputs, value)
	return nil
}

func newTestInterpreter(text string, port *recordingPort) *Interpreter {
	return New(program.New("test", text), Options{Port: port})
}

func mustSweep(t *testing.T, interp *Interpreter) {
	t.Helper()
	if err := interp.Sweep(); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
}

func assertOutputs(t *testing.T, port *recordingPort, want ...int64) {
	t.Helper()
	if len(port.outputs) != len(want) {
		t.Fatalf("expected outputs %v, got %v", want, port.outputs)
	}
	for idx := range want {
		if port.outputs[idx] != want[idx] {
			t.Fatalf("expected outputs %v, got %v", want, port.outputs)
		}
	}
}

func assertPoolValues(t *testing.T, pool *runtime.Pool, want ...int64) {
	t.Helper()
	got := pool.Values()
	if len(got) != len(want) {
		t.Fatalf("expected pool values %v, got %v", want, got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("expected pool values %v, got %v", want, got)
		}
	}
}

func TestRunSetThenHalt(t *testing.T) {
	port := &recordingPort{}
	interp := newTestInterpreter("=5!", port)
	mustSweep(t, interp)
	if interp.Pool().Len() != 1 || interp.Pool().At(0).Value != 5 {
		t.Fatalf("expected one strand holding 5, got %v", interp.Pool().Snapshot())
	}
	if err := interp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !interp.Done() {
		t.Fatalf("expected empty pool")
	}
	if got := interp.Stats().Sweeps; got != 2 {
		t.Fatalf("expected 2 sweeps, got %d", got)
	}
	assertOutputs(t, port)
}

func TestRunWritesValue(t *testing.T) {
	port := &recordingPort{}
	interp := newTestInterpreter("=3w!", port)
	if err := interp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertOutputs(t, port, 3)
}

func TestReadStoresNegativeValues(t *testing.T) {
	port := &recordingPort{inputs: []int64{-7}}
	interp := newTestInterpreter("rw!", port)
	if err := interp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertOutputs(t, port, -7)
}

func TestSpawnGrowsPoolByOnePerExecution(t *testing.T) {
	interp := newTestInterpreter("=2+1", &recordingPort{})
	mustSweep(t, interp)
	if interp.Pool().Len() != 1 {
		t.Fatalf("expected 1 strand after '=2', got %d", interp.Pool().Len())
	}
	mustSweep(t, interp)
	if interp.Pool().Len() != 2 {
		t.Fatalf("expected 2 strands after '+1', got %d", interp.Pool().Len())
	}
	child := interp.Pool().At(1)
	if child.PC != 0 || child.Value != 0 || child.Fresh {
		t.Fatalf("expected spent grace period at line 1, got %v", *child)
	}
	if interp.Stats().Spawned != 1 {
		t.Fatalf("expected 1 spawn, got %d", interp.Stats().Spawned)
	}
	// The seed has run off the end of its line.
	err := interp.Sweep()
	if !errors.Is(err, ErrUnknownInstruction) {
		t.Fatalf("expected ErrUnknownInstruction, got %v", err)
	}
}

func TestSpawnLoopCountsEveryExecution(t *testing.T) {
	interp := newTestInterpreter("=2+1:1", &recordingPort{})
	for sweep := 0; sweep < 12; sweep++ {
		mustSweep(t, interp)
		stats := interp.Stats()
		if int64(interp.Pool().Len()) != 1+stats.Spawned {
			t.Fatalf("sweep %d: pool %d does not match 1+%d spawns", sweep, interp.Pool().Len(), stats.Spawned)
		}
	}
	if interp.Stats().Spawned < 2 {
		t.Fatalf("expected repeated spawning, got %d", interp.Stats().Spawned)
	}
}

func TestFreshStrandWaitsOneSweep(t *testing.T) {
	port := &recordingPort{}
	interp := newTestInterpreter("+2.!\n=7w!", port)

	mustSweep(t, interp)
	spawned := interp.Pool().At(1)
	if spawned.PC != 5 || spawned.Value != 0 {
		t.Fatalf("child executed during its creation sweep: %v", *spawned)
	}

	mustSweep(t, interp)
	if interp.Pool().At(1).Value != 7 {
		t.Fatalf("expected child to run '=7' in its second sweep, got %v", *interp.Pool().At(1))
	}
	assertOutputs(t, port)

	// The seed halts; the child moves into its slot and still gets its turn.
	mustSweep(t, interp)
	assertOutputs(t, port, 7)
	if interp.Pool().Len() != 1 {
		t.Fatalf("expected 1 strand, got %d", interp.Pool().Len())
	}

	if err := interp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if interp.Stats().Sweeps != 4 {
		t.Fatalf("expected 4 sweeps, got %d", interp.Stats().Sweeps)
	}
}

func TestSpawnManyUsesRegisterAsCount(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		input []int64
		want  int
	}{
		{name: "three", text: "=3*2\n!", want: 3},
		{name: "zero", text: "=0*2\n!", want: 0},
		{name: "negative", text: "r*2\n!", input: []int64{-4}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interp := newTestInterpreter(tc.text, &recordingPort{inputs: tc.input})
			mustSweep(t, interp)
			mustSweep(t, interp)
			pool := interp.Pool()
			if pool.Len() != 1+tc.want {
				t.Fatalf("expected %d children, got %d", tc.want, pool.Len()-1)
			}
			for idx := 1; idx < pool.Len(); idx++ {
				child := pool.At(idx)
				if child.Value != 0 || child.PC != 5 {
					t.Fatalf("unexpected child %v", *child)
				}
			}
		})
	}
}

func TestKillRemovesOthersAndCounts(t *testing.T) {
	interp := newTestInterpreter("=5-5w!\n:2", &recordingPort{})
	interp.Pool().At(0).Value = 0
	interp.Pool().Append(runtime.Strand{PC: 7, Value: 5})
	interp.Pool().Append(runtime.Strand{PC: 7, Value: 4})

	mustSweep(t, interp)
	assertPoolValues(t, interp.Pool(), 5, 5, 4)
	mustSweep(t, interp)
	// The executor also holds 5 but is never removed by its own '-'.
	assertPoolValues(t, interp.Pool(), 1, 4)
}

func TestKillKeepsSweepCursorOnSchedule(t *testing.T) {
	port := &recordingPort{}
	interp := newTestInterpreter("-5w!\n:2", port)
	pool := interp.Pool()
	pool.At(0).PC = 5
	pool.At(0).Value = 5
	pool.Append(runtime.Strand{PC: 0, Value: 5})
	pool.Append(runtime.Strand{PC: 5, Value: 5})
	pool.Append(runtime.Strand{PC: 5, Value: 9})

	mustSweep(t, interp)
	assertPoolValues(t, pool, 2, 9)
	// Strand 0 jumps, strand 1 kills, and the last strand runs exactly once.
	if steps := interp.Stats().Steps; steps != 3 {
		t.Fatalf("expected 3 steps, got %d", steps)
	}
	if interp.Stats().Removed != 2 {
		t.Fatalf("expected 2 removals, got %d", interp.Stats().Removed)
	}

	mustSweep(t, interp)
	assertOutputs(t, port, 2)
	if steps := interp.Stats().Steps; steps != 5 {
		t.Fatalf("expected 5 steps, got %d", steps)
	}
}

func TestKillWithNoMatchesZeroesRegister(t *testing.T) {
	interp := newTestInterpreter("=9-3w!", &recordingPort{})
	mustSweep(t, interp)
	mustSweep(t, interp)
	assertPoolValues(t, interp.Pool(), 0)
}

func TestBroadcastAddAndSubtract(t *testing.T) {
	interp := newTestInterpreter("$~~!\n:2", &recordingPort{})
	pool := interp.Pool()
	pool.At(0).Value = 3
	pool.Append(runtime.Strand{PC: 5, Value: 1})
	pool.Append(runtime.Strand{PC: 5, Value: 10})

	mustSweep(t, interp)
	assertPoolValues(t, pool, 3, 4, 13)
	mustSweep(t, interp)
	assertPoolValues(t, pool, 3, 1, 10)
	mustSweep(t, interp)
	// '~' clamps at zero.
	assertPoolValues(t, pool, 3, 0, 7)
}

func TestBroadcastAddHasNoFloor(t *testing.T) {
	interp := newTestInterpreter("r$!\n:2", &recordingPort{inputs: []int64{-5}})
	pool := interp.Pool()
	pool.Append(runtime.Strand{PC: 4, Value: 2})

	mustSweep(t, interp)
	mustSweep(t, interp)
	assertPoolValues(t, pool, -5, -3)
}

func TestHaltRemovesOnlyExecutor(t *testing.T) {
	interp := newTestInterpreter("!\n:2", &recordingPort{})
	pool := interp.Pool()
	pool.Append(runtime.Strand{PC: 2, Value: 8})
	pool.Append(runtime.Strand{PC: 2, Value: 9})

	mustSweep(t, interp)
	snapshot := pool.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 strands, got %v", snapshot)
	}
	for idx, want := range []int64{8, 9} {
		if snapshot[idx].Value != want || snapshot[idx].PC != 2 {
			t.Fatalf("unexpected survivor %v", snapshot[idx])
		}
	}
}

func TestJumpResumesAtLineStart(t *testing.T) {
	port := &recordingPort{}
	interp := newTestInterpreter(":3\n=1w!\n=2w!", port)
	if err := interp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertOutputs(t, port, 2)
}

func TestNewlineDoesNotUseTurn(t *testing.T) {
	port := &recordingPort{}
	interp := newTestInterpreter("=1\nw!", port)
	mustSweep(t, interp)
	mustSweep(t, interp)
	assertOutputs(t, port, 1)
	if err := interp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if interp.Stats().Sweeps != 3 {
		t.Fatalf("expected 3 sweeps, got %d", interp.Stats().Sweeps)
	}
}

func TestFatalErrors(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		port    *recordingPort
		kind    ErrorKind
		target  error
		message string
	}{
		{name: "unknown", text: "=1x", kind: KindUnknownInstruction, target: ErrUnknownInstruction, message: "unknown symbol 'x'"},
		{name: "end of program", text: "=1", kind: KindUnknownInstruction, target: ErrUnknownInstruction, message: "unexpected end of program"},
		{name: "malformed", text: "=w", kind: KindMalformedLiteral, target: ErrMalformedLiteral, message: "expected number after '='"},
		{name: "line too large", text: "+3", kind: KindLineOutOfRange, target: ErrLineOutOfRange, message: "line number out of bounds: 3"},
		{name: "line zero", text: ":0", kind: KindLineOutOfRange, target: ErrLineOutOfRange, message: "line number out of bounds: 0"},
		{name: "read failure", text: "r", port: &recordingPort{readErr: errors.New("eof")}, kind: KindIOFailure, target: ErrIOFailure, message: "i/o failure: read: eof"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port := tc.port
			if port == nil {
				port = &recordingPort{}
			}
			err := newTestInterpreter(tc.text, port).Run(context.Background())
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			var runErr *Error
			if !errors.As(err, &runErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if runErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, runErr.Kind)
			}
			if err.Error() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestUnknownInstructionHaltsEveryStrand(t *testing.T) {
	interp := newTestInterpreter("+2.?\n:2", &recordingPort{})
	err := interp.Run(context.Background())
	var runErr *Error
	if !errors.As(err, &runErr) || runErr.Kind != KindUnknownInstruction {
		t.Fatalf("expected UnknownInstruction, got %v", err)
	}
	if runErr.Strand != 0 || runErr.PC != 3 {
		t.Fatalf("expected failure at strand 0 pc 3, got strand %d pc %d", runErr.Strand, runErr.PC)
	}
	if interp.Pool().Len() != 2 {
		t.Fatalf("expected other strands to be left in place, got %d", interp.Pool().Len())
	}
}

func TestMissingPortIsIOFailure(t *testing.T) {
	interp := New(program.New("test", "w"), Options{})
	if err := interp.Run(context.Background()); !errors.Is(err, ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	interp := newTestInterpreter(":1", &recordingPort{})
	if err := interp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if interp.Stats().Sweeps != 0 {
		t.Fatalf("expected no sweeps, got %d", interp.Stats().Sweeps)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	text := "=3*2=2-0w!\n=1$w!"
	var first []int64
	for attempt := 0; attempt < 3; attempt++ {
		port := &recordingPort{}
		if err := newTestInterpreter(text, port).Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if attempt == 0 {
			first = port.outputs
			continue
		}
		assertOutputs(t, port, first...)
	}
}

func TestRunLogsStepsAtTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	interp := New(program.New("test", "=4+1!"), Options{Port: &recordingPort{}, Logger: logger})
	if err := interp.Sweep(); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if err := interp.Sweep(); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	logs := buf.String()
	for _, want := range []string{`"message":"step"`, `"instr":"="`, `"message":"spawned strands"`, `"message":"sweep start"`} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %s in logs:\n%s", want, logs)
		}
	}
}
