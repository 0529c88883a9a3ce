// Package evmdebug single-steps EVM execution, blocking the interpreter
// before every opcode so the stack, memory and gas of a probe program can be
// inspected. It hooks into geth as a vm.EVMLogger and into execution options
// as a runopts.Option.
package evmdebug

import (
	"context"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/solidifylabs/fillgen/internal/await"
	"github.com/solidifylabs/fillgen/runopts"
)

// Distinct void types so the channels can't be accidentally swapped; each
// carries its direction in the Debugger / tracer field types.
type (
	advance  struct{}
	release  struct{}
	advanced struct{}
	halted   struct{}
)

// A Debugger blocks the interpreter before each opcode until told to
// advance. Only a single call frame is supported, which requires execution
// via vm.EVMInterpreter.Run(); the CALL and CREATE families won't be traced
// into.
//
// A Debugger is a runopts.Option; passing it to Code.Run() installs its
// tracer. Execution must be advanced until Done() returns true or the
// goroutine running the EVM leaks; calling FastForward(), typically
// deferred, guarantees this.
type Debugger struct {
	t *tracer

	advance chan<- advance
	release chan<- release

	advanced <-chan advanced
	halted   <-chan halted
}

// NewDebugger constructs a Debugger. Check State().Err once Done() returns
// true.
func NewDebugger() *Debugger {
	adv := make(chan advance)
	rel := make(chan release)
	stepped := make(chan advanced)
	done := make(chan halted)

	// Each channel appears twice with complementary directions; the sending
	// side closes it.
	return &Debugger{
		advance:  adv,
		release:  rel,
		advanced: stepped,
		halted:   done,
		t: &tracer{
			advance:  adv,
			release:  rel,
			advanced: stepped,
			halted:   done,
		},
	}
}

// Apply installs the Debugger's tracer in the execution configuration,
// making a Debugger usable directly as a runopts.Option.
func (d *Debugger) Apply(cfg *runopts.Configuration) error {
	cfg.VMConfig.Tracer = d.Tracer()
	return nil
}

// Tracer returns the vm.EVMLogger through which the Debugger intercepts
// execution, for callers building a vm.Config themselves.
func (d *Debugger) Tracer() vm.EVMLogger {
	return d.t
}

// Wait blocks until the EVM is stopped at an opcode, after which State() is
// valid. It is only needed to inspect state before the first Step().
func (d *Debugger) Wait() {
	d.waitForBlockedEVM()
}

func (d *Debugger) waitForBlockedEVM() {
	// The flag is raised within an opcode's dispatch so the wait is
	// negligible and not worth threading a caller context through.
	// await.ErrClosed is the post-completion happy path.
	_ = d.t.atOpcode.Wait(context.Background())
}

// Step executes the currently blocked opcode and blocks the next one,
// returning once the EVM is stopped again. The first opcode only runs on the
// first Step(), so initial state can be inspected beforehand via Wait().
//
// Step must not be called concurrently with other Debugger methods, nor
// after Done() returns true.
func (d *Debugger) Step() {
	d.advance <- advance{}
	// The tracer either closes halted or lowers atOpcode before signalling
	// on advanced, so after the receive the checks below are synchronised.
	<-d.advanced

	select {
	case <-d.halted:
		d.close(true)
	default:
		// Unblocking here means the next opcode is blocked, so the current
		// one has fully completed.
		d.waitForBlockedEVM()
	}
}

// FastForward runs all remaining opcodes, as if Step() were called until
// Done(). Unlike Step() it may be called once execution has ended, so defer
// it to guarantee resources are released:
//
//	dbg := evmdebug.NewDebugger()
//	defer dbg.FastForward()
func (d *Debugger) FastForward() {
	select {
	case <-d.t.release: // already closed
		return
	default:
	}

	close(d.release)
	for {
		select {
		case <-d.advanced: // drain
		case <-d.halted:
			d.close(false /* release already closed */)
			return
		}
	}
}

// Done reports whether execution has ended.
func (d *Debugger) Done() bool {
	select {
	case <-d.halted:
		return true
	default:
		return false
	}
}

// State returns the captured state, overwritten on every Step(). Call it
// once and retain the pointer. Contents are only valid after the first
// Step(). Pointers within are owned by the EVM; modify with caution.
func (d *Debugger) State() *CapturedState {
	return &d.t.last
}

// close must not be called before the halted channel is closed.
func (d *Debugger) close(closeRelease bool) {
	close(d.advance)
	if closeRelease {
		close(d.release)
	}
	d.t.atOpcode.Close()
}

// CapturedState carries the values the interpreter reported for the last
// executed opcode. See the ownership note on Debugger.State().
type CapturedState struct {
	PC, GasLeft, GasCost uint64
	Op                   vm.OpCode
	Context              *vm.ScopeContext
	ReturnData           []byte
	Err                  error
}

// StackBack returns the n-th stack item from the top without popping it.
func (c *CapturedState) StackBack(n int) *uint256.Int {
	return c.Context.Stack.Back(n)
}

// tracer implements vm.EVMLogger. When EVMInterpreter.Run() is called
// directly, only CaptureState and CaptureFault are ever invoked.
type tracer struct {
	vm.EVMLogger // unused hooks come from the embedded interface

	// CaptureState and CaptureFault block on these until Step() or
	// FastForward() signals.
	advance <-chan advance
	release <-chan release

	advanced chan<- advanced
	// Closed after STOP or RETURN executes, or on any fault.
	halted chan<- halted

	// Raised while the EVM is blocked at an opcode; lowered while one
	// executes. Waited on by Debugger.Wait().
	atOpcode await.Flag

	last CapturedState
}

func (t *tracer) capture(pc uint64, op vm.OpCode, gasLeft, gasCost uint64, scope *vm.ScopeContext, retData []byte, err error) {
	t.last.PC = pc
	t.last.Op = op
	t.last.GasLeft = gasLeft
	t.last.GasCost = gasCost
	t.last.Context = scope
	t.last.ReturnData = retData
	t.last.Err = err
}

func (t *tracer) CaptureState(pc uint64, op vm.OpCode, gasLeft, gasCost uint64, scope *vm.ScopeContext, retData []byte, depth int, err error) {
	t.atOpcode.Set(true) // unblocks Debugger.Wait()

	select {
	case <-t.advance:
	case <-t.release:
	}

	t.capture(pc, op, gasLeft, gasCost, scope, retData, err)

	// Signalling on advanced MUST come last in both branches;
	// Debugger.Step() runs its checks as soon as the receive unblocks.
	switch op {
	case vm.STOP, vm.RETURN: // REVERT arrives via CaptureFault
		close(t.halted)
		close(t.advanced)
	default:
		t.atOpcode.Set(false)
		t.advanced <- advanced{}
	}
}

func (t *tracer) CaptureFault(pc uint64, op vm.OpCode, gasLeft, gasCost uint64, scope *vm.ScopeContext, depth int, err error) {
	t.atOpcode.Set(true)
	defer t.atOpcode.Set(false)

	select {
	case <-t.advance:
	case <-t.release:
	}

	t.capture(pc, op, gasLeft, gasCost, scope, nil, err)

	// As in CaptureState, closing advanced comes last.
	close(t.halted)
	close(t.advanced)
}
