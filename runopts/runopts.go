// Package runopts provides configuration options for fillgen.Code.Run() and
// the probe executions performed by the filler generators.
package runopts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/solidifylabs/fillgen/vmspec"
)

// A Configuration carries all values that can be modified to configure a
// probe execution. It is initially set by Run() and then passed to all
// Options to be modified.
type Configuration struct {
	// vm.NewEVM()
	BlockCtx    vm.BlockContext
	TxCtx       vm.TxContext
	StateDB     vm.StateDB
	ChainConfig *params.ChainConfig
	VMConfig    vm.Config
	// The frame in which the compiled bytecode runs.
	Contract common.Address
	Sender   common.Address
	Gas      uint64
	ReadOnly bool // static call
}

// An Option modifies a Configuration.
type Option interface {
	Apply(*Configuration) error
}

// A FuncOption converts any function into an Option by calling itself as
// Apply().
type FuncOption func(*Configuration) error

// Apply returns f(c).
func (f FuncOption) Apply(c *Configuration) error {
	return f(c)
}

// ReadOnly sets the `readOnly` argument to true when calling
// EVMInterpreter.Run(), equivalent to a static call.
func ReadOnly() Option {
	return FuncOption(func(c *Configuration) error {
		c.ReadOnly = true
		return nil
	})
}

// Gas sets the gas allowance of the frame.
func Gas(limit uint64) Option {
	return FuncOption(func(c *Configuration) error {
		c.Gas = limit
		return nil
	})
}

// Contract sets the address at which the compiled bytecode runs.
func Contract(addr common.Address) Option {
	return FuncOption(func(c *Configuration) error {
		c.Contract = addr
		return nil
	})
}

// Sender sets the caller of the frame and the transaction origin.
func Sender(addr common.Address) Option {
	return FuncOption(func(c *Configuration) error {
		c.Sender = addr
		c.TxCtx.Origin = addr
		return nil
	})
}

// Fork runs the bytecode under the instruction set and chain rules of the
// given network upgrade. Pre-Paris forks clear the RANDOM digest so the
// DIFFICULTY opcode reads the block difficulty, as it did then.
func Fork(f vmspec.Fork) Option {
	return FuncOption(func(c *Configuration) error {
		c.ChainConfig = f.ChainConfig()
		if f.Before(vmspec.Paris) {
			c.BlockCtx.Random = nil
		} else if c.BlockCtx.Random == nil {
			c.BlockCtx.Random = &common.Hash{}
		}
		return nil
	})
}

// StateDB replaces the in-memory state database that probes execute against.
// Earlier Options that seeded accounts are discarded with it, so order
// matters.
func StateDB(sdb vm.StateDB) Option {
	return FuncOption(func(c *Configuration) error {
		c.StateDB = sdb
		return nil
	})
}

// Account seeds the configuration's StateDB with a funded account,
// optionally carrying code.
func Account(addr common.Address, balance *big.Int, code []byte) Option {
	return FuncOption(func(c *Configuration) error {
		c.StateDB.CreateAccount(addr)
		if balance != nil {
			bal, overflow := uint256.FromBig(balance)
			if overflow {
				return fmt.Errorf("account %v balance %v overflows a word", addr, balance)
			}
			c.StateDB.AddBalance(addr, bal)
		}
		if len(code) > 0 {
			c.StateDB.SetCode(addr, code)
		}
		return nil
	})
}

// NewMemoryState returns an empty StateDB backed by an in-memory key-value
// store, suitable for single-probe executions.
func NewMemoryState() (*state.StateDB, error) {
	return state.New(gethtypes.EmptyRootHash, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
}
