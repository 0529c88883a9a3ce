package fillgen

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/solidifylabs/fillgen/evmdebug"
	"github.com/solidifylabs/fillgen/filler"
	"github.com/solidifylabs/fillgen/runopts"
	"github.com/solidifylabs/fillgen/vmspec"
)

// An ExecutionError carries the cause of a failed probe execution along with
// any buffer returned by the code (i.e. REVERT data). The underflow
// generator branches on the cause, so the vm error is wrapped, not
// flattened.
type ExecutionError struct {
	ReturnData []byte
	Err        error
}

var _ error = (*ExecutionError)(nil)

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Reverted reports whether the execution ended in an explicit REVERT, as
// opposed to an exceptional abort.
func (e *ExecutionError) Reverted() bool {
	return errors.Is(e.Err, vm.ErrExecutionReverted)
}

// IsStackUnderflow reports whether the error chain contains the
// interpreter's stack-underflow abort.
func IsStackUnderflow(err error) bool {
	var uf *vm.ErrStackUnderflow
	return errors.As(err, &uf)
}

// IsInvalidOpCode reports whether the error chain contains the
// interpreter's invalid-opcode abort.
func IsInvalidOpCode(err error) bool {
	var inv *vm.ErrInvalidOpCode
	return errors.As(err, &inv)
}

// Run calls c.Compile() and runs the compiled bytecode on a freshly
// instantiated vm.EVMInterpreter backed by an in-memory StateDB. The default
// parameters mirror the env and pre sections of generated fillers: code runs
// on the Cancun fork at the canonical probe address, funded, with the
// canonical sender as caller.
func (c Code) Run(callData []byte, opts ...runopts.Option) ([]byte, error) {
	compiled, err := c.Compile()
	if err != nil {
		return nil, fmt.Errorf("%T.Compile(): %v", c, err)
	}
	return runBytecode(compiled, callData, opts...)
}

// StartDebugging compiles the Code, appends an evmdebug.Debugger to the
// Options, and executes the bytecode in a new goroutine, returning the
// Debugger along with a function to retrieve the execution results. The
// function will block until execution returns, i.e. when dbg.Done() returns
// true. There is no need to call dbg.Wait().
//
// If execution never completes, such that dbg.Done() always returns false,
// then the goroutine will be leaked.
func (c Code) StartDebugging(callData []byte, opts ...runopts.Option) (*evmdebug.Debugger, func() ([]byte, error), error) {
	compiled, err := c.Compile()
	if err != nil {
		return nil, nil, fmt.Errorf("%T.Compile(): %v", c, err)
	}

	dbg := evmdebug.NewDebugger()
	opts = append(opts, dbg)

	var (
		result []byte
		runErr error
	)
	done := make(chan struct{})
	go func() {
		result, runErr = runBytecode(compiled, callData, opts...)
		close(done)
	}()

	dbg.Wait()

	return dbg, func() ([]byte, error) {
		<-done
		return result, runErr
	}, nil
}

// RunTerminalDebugger compiles the Code and opens a terminal UI in which
// execution can be single-stepped, inspecting the stack, memory and
// calldata at each opcode.
func (c Code) RunTerminalDebugger(callData []byte, opts ...runopts.Option) error {
	compiled, err := c.Compile()
	if err != nil {
		return fmt.Errorf("%T.Compile(): %v", c, err)
	}

	dbg := evmdebug.NewDebugger()
	opts = append(opts, dbg)

	var (
		result []byte
		runErr error
	)
	done := make(chan struct{})
	go func() {
		result, runErr = runBytecode(compiled, callData, opts...)
		close(done)
	}()
	dbg.Wait()

	return dbg.RunTerminalUI(callData, compiled, func() ([]byte, error) {
		<-done
		return result, runErr
	})
}

func runBytecode(compiled, callData []byte, opts ...runopts.Option) ([]byte, error) {
	cfg, err := newRunConfig(opts...)
	if err != nil {
		return nil, err
	}
	// Mirror generated fillers' pre sections, unless an Option already put
	// the accounts in place.
	for _, addr := range []common.Address{cfg.Sender, cfg.Contract} {
		if !cfg.StateDB.Exist(addr) {
			cfg.StateDB.CreateAccount(addr)
			cfg.StateDB.AddBalance(addr, uint256.MustFromBig(filler.InitialBalance()))
		}
	}
	if len(cfg.StateDB.GetCode(cfg.Contract)) == 0 {
		cfg.StateDB.SetCode(cfg.Contract, compiled)
	}

	// Berlin gas accounting requires the tx access list to be seeded before
	// the first opcode executes.
	rules := cfg.ChainConfig.Rules(cfg.BlockCtx.BlockNumber, cfg.BlockCtx.Random != nil, cfg.BlockCtx.Time)
	cfg.StateDB.Prepare(rules, cfg.Sender, cfg.BlockCtx.Coinbase, &cfg.Contract, vm.ActivePrecompiles(rules), nil)

	interp := vm.NewEVM(
		cfg.BlockCtx,
		cfg.TxCtx,
		cfg.StateDB,
		cfg.ChainConfig,
		cfg.VMConfig,
	).Interpreter()

	cc := vm.NewContract(
		vm.AccountRef(cfg.Sender),
		vm.AccountRef(cfg.Contract),
		new(uint256.Int),
		cfg.Gas,
	)
	cc.SetCallCode(&cfg.Contract, crypto.Keccak256Hash(compiled), compiled)

	out, err := interp.Run(cc, callData, cfg.ReadOnly)
	if err != nil {
		return nil, &ExecutionError{ReturnData: out, Err: err}
	}
	return out, nil
}

func newRunConfig(opts ...runopts.Option) (*runopts.Configuration, error) {
	sdb, err := runopts.NewMemoryState()
	if err != nil {
		return nil, fmt.Errorf("runopts.NewMemoryState(): %v", err)
	}

	random := common.BigToHash(big.NewInt(0x20000))
	cfg := &runopts.Configuration{
		BlockCtx: vm.BlockContext{
			Coinbase:    filler.Coinbase,
			GasLimit:    0x26e1f476fe1e22,
			BlockNumber: big.NewInt(1),
			Time:        1000,
			Difficulty:  big.NewInt(0x20000),
			BaseFee:     big.NewInt(10),
			BlobBaseFee: big.NewInt(1),
			Random:      &random, // post merge
			GetHash: func(n uint64) common.Hash {
				var buf [8]byte
				binary.BigEndian.PutUint64(buf[:], n)
				return crypto.Keccak256Hash(buf[:])
			},
		},
		TxCtx: vm.TxContext{
			Origin:   filler.Sender,
			GasPrice: big.NewInt(10),
		},
		ChainConfig: vmspec.LatestFork.ChainConfig(),
		Contract:    filler.ProbeAddress,
		Sender:      filler.Sender,
		Gas:         30e6,
	}
	cfg.StateDB = sdb

	for _, o := range opts {
		if err := o.Apply(cfg); err != nil {
			return nil, fmt.Errorf("runopts.Option[%T].Apply(): %v", o, err)
		}
	}
	return cfg, nil
}
