package fillgen

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"golang.org/x/sync/errgroup"

	"github.com/solidifylabs/fillgen/filler"
	"github.com/solidifylabs/fillgen/runopts"
	"github.com/solidifylabs/fillgen/types"
	"github.com/solidifylabs/fillgen/vmspec"
)

// ErrUnprobeable marks opcodes whose behaviour cannot be exercised by a
// single-frame probe: the CALL/CREATE family needs nested frames and
// SELFDESTRUCT destroys the probe account itself. They still get underflow
// fillers, which abort before the frame would be entered.
var ErrUnprobeable = errors.New("cannot be probed in a single frame")

// txGasLimit is the gasLimit of generated fillers' transactions.
const txGasLimit = 30_000_000

// ProbeCallData is the calldata generated fillers pass to probe programs: 32
// distinct non-zero bytes, so CALLDATA* opcodes have something to observe.
func ProbeCallData() []byte {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i + 1)
	}
	return data
}

// memWord is the value probes scribble into memory; distinctive in hex.
const memWord = uint64(0xdeadbeefdeadbeef)

// storeResult returns a probe computing op(args...) and storing the result
// in slot 0.
func storeResult(op types.OpCode, args ...uint64) Code {
	call := make([]types.Bytecoder, 0, len(args)+1)
	call = append(call, op)
	for _, a := range args {
		call = append(call, PUSH(a))
	}
	return Code{Fn(SSTORE, PUSH(0), Fn(call...))}
}

// mark is a probe tail recording in slot 0 that the preceding code executed.
func mark() types.Bytecoder {
	return Fn(SSTORE, PUSH(0), PUSH(1))
}

// storeMem0 is a probe tail storing memory word 0 in slot 0.
func storeMem0() types.Bytecoder {
	return Fn(SSTORE, PUSH(0), Fn(MLOAD, PUSH(0)))
}

// ProbeFor returns a program exercising the opcode and recording its
// observable result in storage slot 0 (probes needing scratch space also use
// slot 1). It returns an error wrapping ErrUnprobeable for opcodes that
// cannot run in a single frame.
func ProbeFor(s vmspec.Spec) (Code, error) {
	if c, ok := probeOverride(s.Op); ok {
		return c, nil
	}

	switch s.Category {
	case vmspec.Arithmetic, vmspec.Comparison, vmspec.Bitwise:
		ops := [4][]uint64{1: {0x2c}, 2: {0x1e, 0x07}, 3: {0x1e, 0x06, 0x07}}
		return storeResult(types.OpCode(s.Op), ops[s.Pop]...), nil

	case vmspec.PushOps:
		return pushProbe(s.Op), nil
	case vmspec.DupOps:
		return dupProbe(s.Op), nil
	case vmspec.SwapOps:
		return swapProbe(s.Op), nil
	case vmspec.Log:
		return logProbe(s.Op), nil
	}

	if s.Pop == 0 && s.Push == 1 {
		return Code{Fn(SSTORE, PUSH(0), types.OpCode(s.Op))}, nil
	}
	return nil, fmt.Errorf("%v %w", s.Op, ErrUnprobeable)
}

func probeOverride(op vm.OpCode) (Code, bool) {
	switch op {
	case vm.STOP:
		return Code{mark(), STOP}, true

	case vm.BYTE:
		// Index 31 is the least-significant byte; lower indices read zeroes.
		return storeResult(BYTE, 31, 0x07), true

	case vm.KECCAK256:
		return Code{
			Fn(MSTORE, PUSH(0), PUSH(memWord)),
			Fn(SSTORE, PUSH(0), Fn(KECCAK256, PUSH(0), PUSH(32))),
		}, true

	case vm.BALANCE:
		return Code{Fn(SSTORE, PUSH(0), Fn(BALANCE, PUSH(filler.ProbeAddress)))}, true

	case vm.CALLDATALOAD:
		return Code{Fn(SSTORE, PUSH(0), Fn(CALLDATALOAD, PUSH(0)))}, true

	case vm.CALLDATACOPY:
		return Code{Fn(CALLDATACOPY, PUSH(0), PUSH(0), PUSH(32)), storeMem0()}, true

	case vm.CODECOPY:
		return Code{Fn(CODECOPY, PUSH(0), PUSH(0), PUSH(32)), storeMem0()}, true

	case vm.EXTCODESIZE:
		return Code{Fn(SSTORE, PUSH(0), Fn(EXTCODESIZE, PUSH(filler.ProbeAddress)))}, true

	case vm.EXTCODECOPY:
		return Code{
			Fn(EXTCODECOPY, PUSH(filler.ProbeAddress), PUSH(0), PUSH(0), PUSH(32)),
			storeMem0(),
		}, true

	case vm.EXTCODEHASH:
		return Code{Fn(SSTORE, PUSH(0), Fn(EXTCODEHASH, PUSH(filler.ProbeAddress)))}, true

	case vm.RETURNDATASIZE:
		// No call has happened so the size is zero; +1 proves execution.
		return Code{Fn(SSTORE, PUSH(0), Fn(ADD, PUSH(1), RETURNDATASIZE))}, true

	case vm.RETURNDATACOPY:
		return Code{Fn(RETURNDATACOPY, PUSH(0), PUSH(0), PUSH(0)), mark()}, true

	case vm.BLOCKHASH:
		// The parent hash is chain-specific, so assert only that it's
		// non-zero.
		return Code{
			Fn(SSTORE, PUSH(0), Fn(ISZERO, Fn(ISZERO, Fn(BLOCKHASH, PUSH(0))))),
		}, true

	case vm.BLOBHASH:
		// The filler's transaction carries no blobs, so index 0 reads zero.
		return Code{Fn(SSTORE, PUSH(0), Fn(ISZERO, Fn(BLOBHASH, PUSH(0))))}, true

	case vm.POP:
		return Code{Fn(POP, PUSH(0x07)), mark()}, true

	case vm.MLOAD, vm.MSTORE:
		return Code{Fn(MSTORE, PUSH(0), PUSH(memWord)), storeMem0()}, true

	case vm.MSTORE8:
		return Code{Fn(MSTORE8, PUSH(0), PUSH(0xab)), storeMem0()}, true

	case vm.MSIZE:
		return Code{Fn(MSTORE, PUSH(0), PUSH(1)), Fn(SSTORE, PUSH(0), MSIZE)}, true

	case vm.MCOPY:
		return Code{
			Fn(MSTORE, PUSH(0), PUSH(memWord)),
			Fn(MCOPY, PUSH(32), PUSH(0), PUSH(32)),
			Fn(SSTORE, PUSH(0), Fn(MLOAD, PUSH(32))),
		}, true

	case vm.SLOAD:
		return Code{
			Fn(SSTORE, PUSH(1), PUSH(0x5a5a)),
			Fn(SSTORE, PUSH(0), Fn(SLOAD, PUSH(1))),
		}, true

	case vm.SSTORE:
		return Code{Fn(SSTORE, PUSH(0), PUSH(0x5a5a))}, true

	case vm.TLOAD, vm.TSTORE:
		return Code{
			Fn(TSTORE, PUSH(0), PUSH(0x5a5a)),
			Fn(SSTORE, PUSH(0), Fn(TLOAD, PUSH(0))),
		}, true

	case vm.JUMP:
		return Code{
			Fn(JUMP, PUSH("dest")),
			JUMPDEST("dest"), SetDepth(0),
			mark(),
		}, true

	case vm.JUMPI:
		return Code{
			Fn(JUMPI, PUSH("dest"), PUSH(1)),
			JUMPDEST("dest"), SetDepth(0),
			mark(),
		}, true

	case vm.PC:
		// Pad so PC reads a non-zero offset.
		return Code{Fn(POP, PUSH(1)), Fn(SSTORE, PUSH(0), PC)}, true

	case vm.JUMPDEST:
		return Code{JUMPDEST("begin"), SetDepth(0), mark()}, true

	case vm.RETURN:
		return Code{
			Fn(MSTORE, PUSH(0), PUSH(memWord)),
			mark(),
			Fn(RETURN, PUSH(0), PUSH(32)),
		}, true

	case vm.REVERT:
		return Code{Fn(REVERT, PUSH(0), PUSH(0))}, true

	case vm.INVALID:
		return Code{INVALID}, true
	}
	return nil, false
}

func pushProbe(op vm.OpCode) Code {
	if op == vm.PUSH0 {
		// Zero at slot zero asserts nothing, so store the value plus one.
		return Code{Raw{byte(vm.PUSH0)}, SetDepth(1), PUSH(1), ADD, PUSH(0), SSTORE}
	}
	n := int(op - vm.PUSH0)
	data := make(Raw, n+1)
	data[0] = byte(op)
	for i := 1; i <= n; i++ {
		data[i] = byte(i)
	}
	return Code{data, SetDepth(1), PUSH(0), SSTORE}
}

func dupProbe(op vm.OpCode) Code {
	n := int(op-vm.DUP1) + 1
	c := make(Code, 0, n+3)
	for i := 1; i <= n; i++ {
		c = append(c, PUSH(uint64(i)))
	}
	// DUPn reaches the first value pushed; slot 0 must read 1.
	return append(c, types.OpCode(op), PUSH(0), SSTORE)
}

func swapProbe(op vm.OpCode) Code {
	n := int(op-vm.SWAP1) + 1
	c := make(Code, 0, n+4)
	for i := 1; i <= n+1; i++ {
		c = append(c, PUSH(uint64(i)))
	}
	// SWAPn brings the first value pushed to the top; slot 0 must read 1.
	return append(c, types.OpCode(op), PUSH(0), SSTORE)
}

func logProbe(op vm.OpCode) Code {
	n := int(op - vm.LOG0)
	call := Code{types.OpCode(op), PUSH(0), PUSH(32)}
	for i := 0; i < n; i++ {
		call = append(call, PUSH(uint64(0xaa+i)))
	}
	return Code{
		Fn(MSTORE, PUSH(0), PUSH(memWord)),
		Fn(call...),
		mark(),
	}
}

// minimumFork returns the newest fork any opcode in the compiled probe
// requires, so a filler's network constraint never admits a fork on which
// the probe itself is invalid.
func minimumFork(compiled []byte) vmspec.Fork {
	f := vmspec.Frontier
	for i := 0; i < len(compiled); i++ {
		op := vm.OpCode(compiled[i])
		if s, ok := vmspec.ByOp(op); ok && s.Fork > f {
			f = s.Fork
		}
		if op.IsPush() {
			i += int(op - vm.PUSH0)
		}
	}
	return f
}

func constraintFork(s vmspec.Spec, compiled []byte) vmspec.Fork {
	f := minimumFork(compiled)
	if s.Fork > f {
		f = s.Fork
	}
	// The GAS reading depends on the fork's gas schedule, so pin it to the
	// fork the probe actually executed on.
	if s.Op == vm.GAS {
		f = vmspec.LatestFork
	}
	return f
}

// executionGas returns the gas available to probe code under the fillers'
// transaction gasLimit, i.e. after the intrinsic cost is deducted, so that
// GAS readings match what a filling tool will observe.
func executionGas(callData []byte) uint64 {
	g := uint64(params.TxGas)
	for _, b := range callData {
		if b == 0 {
			g += params.TxDataZeroGas
		} else {
			g += params.TxDataNonZeroGasEIP2028
		}
	}
	return txGasLimit - g
}

func fillerName(s vmspec.Spec) string {
	return strings.ToLower(s.Name)
}

// exceptionName maps an execution failure to the exception identifier used
// in filler expectException sections, or "" if unrecognised.
func exceptionName(err *ExecutionError) string {
	switch {
	case err.Reverted():
		return "Revert"
	case IsStackUnderflow(err):
		return "StackUnderflow"
	case IsInvalidOpCode(err):
		return "InvalidOpcode"
	default:
		return ""
	}
}

// expectsException reports whether the opcode's probe is supposed to abort.
func expectsException(op vm.OpCode) bool {
	return op == vm.REVERT || op == vm.INVALID
}

// OpcodeFiller builds, executes and captures the probe for one opcode,
// returning a filler whose expect section holds the observed storage and
// whose network constraint starts at the opcode's introducing fork.
func OpcodeFiller(s vmspec.Spec) (*filler.Doc, error) {
	code, err := ProbeFor(s)
	if err != nil {
		return nil, err
	}
	compiled, err := code.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling %v probe: %v", s.Op, err)
	}

	callData := ProbeCallData()
	doc := filler.New(fillerName(s), compiled, callData)
	network := []string{constraintFork(s, compiled).Constraint()}

	sdb := runopts.CaptureStateDB()
	_, runErr := runBytecode(compiled, callData, runopts.Gas(executionGas(callData)), sdb)
	if runErr != nil {
		var ee *ExecutionError
		if errors.As(runErr, &ee) && expectsException(s.Op) && exceptionName(ee) != "" {
			doc.ExpectException = map[string]string{network[0]: exceptionName(ee)}
			return doc, nil
		}
		return nil, fmt.Errorf("executing %v probe: %v", s.Op, runErr)
	}

	storage := make(map[string]string)
	for slot := uint64(0); slot < 4; slot++ {
		v := sdb.Val.GetState(filler.ProbeAddress, common.BigToHash(new(big.Int).SetUint64(slot)))
		if slot == 0 || v != (common.Hash{}) {
			storage[filler.SlotHex(slot)] = filler.WordHex(v)
		}
	}
	doc.Expect = []filler.Expect{{
		Indexes: filler.AllIndexes(),
		Network: network,
		Result: map[string]filler.ExpectedAccount{
			filler.AddressHex(filler.ProbeAddress): {Storage: storage},
		},
	}}
	return doc, nil
}

// UnderflowProbe returns a program giving the opcode one stack item fewer
// than it pops. It is assembled from Raw bytes as Compile() would otherwise
// reject it.
func UnderflowProbe(s vmspec.Spec) (Code, error) {
	if s.Pop == 0 {
		return nil, fmt.Errorf("%v pops nothing so never underflows", s.Op)
	}
	raw := make(Raw, 0, 2*s.Pop-1)
	for i := uint(0); i < s.Pop-1; i++ {
		raw = append(raw, byte(vm.PUSH1), byte(i+1))
	}
	raw = append(raw, byte(s.Op))
	return Code{raw}, nil
}

// UnderflowFiller executes the opcode's underflow probe, verifies that the
// interpreter aborts with a stack underflow, and returns a filler expecting
// that exception.
func UnderflowFiller(s vmspec.Spec) (*filler.Doc, error) {
	code, err := UnderflowProbe(s)
	if err != nil {
		return nil, err
	}
	compiled, err := code.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling %v underflow probe: %v", s.Op, err)
	}

	if _, runErr := runBytecode(compiled, nil); !IsStackUnderflow(runErr) {
		return nil, fmt.Errorf("%v with %d stack item(s): want stack underflow, got %v", s.Op, s.Pop-1, runErr)
	}

	doc := filler.New(fillerName(s)+"Underflow", compiled, nil)
	doc.ExpectException = map[string]string{
		constraintFork(s, compiled).Constraint(): "StackUnderflow",
	}
	return doc, nil
}

// A BatchReport records the outcome of generating a directory of fillers.
type BatchReport struct {
	Written []string          // file names, sorted
	Skipped map[string]string // mnemonic to reason
}

// FillOpcodes writes one `<mnemonic>Filler.yml` per probeable opcode of the
// fork's instruction set into dir, generating concurrently. Unprobeable
// opcodes are reported in the returned BatchReport rather than failing the
// batch.
func FillOpcodes(ctx context.Context, dir string, fork vmspec.Fork) (*BatchReport, error) {
	return writeBatch(ctx, dir, vmspec.AllAt(fork), func(s vmspec.Spec) (*filler.Doc, error) {
		doc, err := OpcodeFiller(s)
		if errors.Is(err, ErrUnprobeable) {
			return nil, errSkip(err)
		}
		return doc, err
	})
}

// FillUnderflows writes one `<mnemonic>UnderflowFiller.yml` per
// stack-popping opcode of the fork's instruction set into dir.
func FillUnderflows(ctx context.Context, dir string, fork vmspec.Fork) (*BatchReport, error) {
	var specs []vmspec.Spec
	for _, s := range vmspec.AllAt(fork) {
		if s.Pop > 0 {
			specs = append(specs, s)
		}
	}
	return writeBatch(ctx, dir, specs, UnderflowFiller)
}

// A skipped error marks opcodes recorded in BatchReport.Skipped instead of
// failing the batch.
type skipped struct{ err error }

func errSkip(err error) error   { return skipped{err} }
func (s skipped) Error() string { return s.err.Error() }
func (s skipped) Unwrap() error { return s.err }

func writeBatch(ctx context.Context, dir string, specs []vmspec.Spec, build func(vmspec.Spec) (*filler.Doc, error)) (*BatchReport, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report = &BatchReport{Skipped: make(map[string]string)}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, s := range specs {
		s := s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := build(s)
			var skip skipped
			if errors.As(err, &skip) {
				mu.Lock()
				report.Skipped[s.Name] = skip.err.Error()
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}

			buf, err := doc.YAML()
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			name := doc.Name + "Filler.yml"
			if err := os.WriteFile(filepath.Join(dir, name), buf, 0o644); err != nil {
				return err
			}

			mu.Lock()
			report.Written = append(report.Written, name)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(report.Written)
	return report, nil
}
