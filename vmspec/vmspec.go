// Package vmspec is an EVM opcode reference as code: per-opcode metadata
// (mnemonic, stack effects, category, introducing fork and EIP) for every
// valid opcode through Cancun, plus the network-upgrade schedule. It is the
// source of truth for the assembler's stack accounting and for the filler
// generators' fork constraints.
package vmspec

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/core/vm"
)

// A Category groups opcodes the way the reference tables do.
type Category uint8

const (
	Arithmetic Category = iota
	Comparison
	Bitwise
	Keccak
	Environment
	Block
	StackOps
	Memory
	Storage
	Transient
	Flow
	PushOps
	DupOps
	SwapOps
	Log
	System
)

var categoryNames = map[Category]string{
	Arithmetic:  "arithmetic",
	Comparison:  "comparison",
	Bitwise:     "bitwise",
	Keccak:      "keccak",
	Environment: "environment",
	Block:       "block",
	StackOps:    "stack",
	Memory:      "memory",
	Storage:     "storage",
	Transient:   "transient",
	Flow:        "flow",
	PushOps:     "push",
	DupOps:      "dup",
	SwapOps:     "swap",
	Log:         "log",
	System:      "system",
}

// String returns the category's lower-case name.
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// A Spec is one row of the opcode reference table.
type Spec struct {
	Op       vm.OpCode
	Name     string
	Pop      uint // minimum stack depth; the words consumed
	Push     uint // words on the stack afterwards, of the Pop consumed
	Category Category
	Fork     Fork // upgrade that introduced the opcode
	EIP      int  // introducing EIP, or 0 for the genesis instruction set
}

// Delta returns the opcode's stack requirement and effect: it consumes pop
// words and leaves push words in their place.
func (s Spec) Delta() (pop, push uint) {
	return s.Pop, s.Push
}

// ValidAt reports whether the opcode exists in the instruction set of the
// given fork.
func (s Spec) ValidAt(f Fork) bool {
	return f.AtLeast(s.Fork)
}

// String returns the row as "0x01 ADD".
func (s Spec) String() string {
	return fmt.Sprintf("%#02x %s", byte(s.Op), s.Name)
}

var (
	table  = buildTable()
	byName = func() map[string]Spec {
		m := make(map[string]Spec, len(table))
		for _, s := range table {
			m[s.Name] = s
		}
		return m
	}()
)

// ByOp returns the table row for the opcode.
func ByOp(op vm.OpCode) (Spec, bool) {
	s, ok := table[op]
	return s, ok
}

// ByName returns the table row with the given mnemonic.
func ByName(name string) (Spec, bool) {
	s, ok := byName[name]
	return s, ok
}

// StackDelta returns the stack requirement and effect of the opcode, and
// whether the opcode is valid at all.
func StackDelta(op vm.OpCode) (pop, push uint, ok bool) {
	s, ok := table[op]
	if !ok {
		return 0, 0, false
	}
	return s.Pop, s.Push, true
}

// All returns every table row in opcode order.
func All() []Spec {
	out := make([]Spec, 0, len(table))
	for _, s := range table {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}

// AllAt returns every table row valid at the fork, in opcode order.
func AllAt(f Fork) []Spec {
	var out []Spec
	for _, s := range All() {
		if s.ValidAt(f) {
			out = append(out, s)
		}
	}
	return out
}

func buildTable() map[vm.OpCode]Spec {
	rows := []Spec{
		{vm.STOP, "STOP", 0, 0, System, Frontier, 0},
		{vm.ADD, "ADD", 2, 1, Arithmetic, Frontier, 0},
		{vm.MUL, "MUL", 2, 1, Arithmetic, Frontier, 0},
		{vm.SUB, "SUB", 2, 1, Arithmetic, Frontier, 0},
		{vm.DIV, "DIV", 2, 1, Arithmetic, Frontier, 0},
		{vm.SDIV, "SDIV", 2, 1, Arithmetic, Frontier, 0},
		{vm.MOD, "MOD", 2, 1, Arithmetic, Frontier, 0},
		{vm.SMOD, "SMOD", 2, 1, Arithmetic, Frontier, 0},
		{vm.ADDMOD, "ADDMOD", 3, 1, Arithmetic, Frontier, 0},
		{vm.MULMOD, "MULMOD", 3, 1, Arithmetic, Frontier, 0},
		{vm.EXP, "EXP", 2, 1, Arithmetic, Frontier, 0},
		{vm.SIGNEXTEND, "SIGNEXTEND", 2, 1, Arithmetic, Frontier, 0},

		{vm.LT, "LT", 2, 1, Comparison, Frontier, 0},
		{vm.GT, "GT", 2, 1, Comparison, Frontier, 0},
		{vm.SLT, "SLT", 2, 1, Comparison, Frontier, 0},
		{vm.SGT, "SGT", 2, 1, Comparison, Frontier, 0},
		{vm.EQ, "EQ", 2, 1, Comparison, Frontier, 0},
		{vm.ISZERO, "ISZERO", 1, 1, Comparison, Frontier, 0},

		{vm.AND, "AND", 2, 1, Bitwise, Frontier, 0},
		{vm.OR, "OR", 2, 1, Bitwise, Frontier, 0},
		{vm.XOR, "XOR", 2, 1, Bitwise, Frontier, 0},
		{vm.NOT, "NOT", 1, 1, Bitwise, Frontier, 0},
		{vm.BYTE, "BYTE", 2, 1, Bitwise, Frontier, 0},
		{vm.SHL, "SHL", 2, 1, Bitwise, Constantinople, 145},
		{vm.SHR, "SHR", 2, 1, Bitwise, Constantinople, 145},
		{vm.SAR, "SAR", 2, 1, Bitwise, Constantinople, 145},

		{vm.KECCAK256, "KECCAK256", 2, 1, Keccak, Frontier, 0},

		{vm.ADDRESS, "ADDRESS", 0, 1, Environment, Frontier, 0},
		{vm.BALANCE, "BALANCE", 1, 1, Environment, Frontier, 0},
		{vm.ORIGIN, "ORIGIN", 0, 1, Environment, Frontier, 0},
		{vm.CALLER, "CALLER", 0, 1, Environment, Frontier, 0},
		{vm.CALLVALUE, "CALLVALUE", 0, 1, Environment, Frontier, 0},
		{vm.CALLDATALOAD, "CALLDATALOAD", 1, 1, Environment, Frontier, 0},
		{vm.CALLDATASIZE, "CALLDATASIZE", 0, 1, Environment, Frontier, 0},
		{vm.CALLDATACOPY, "CALLDATACOPY", 3, 0, Environment, Frontier, 0},
		{vm.CODESIZE, "CODESIZE", 0, 1, Environment, Frontier, 0},
		{vm.CODECOPY, "CODECOPY", 3, 0, Environment, Frontier, 0},
		{vm.GASPRICE, "GASPRICE", 0, 1, Environment, Frontier, 0},
		{vm.EXTCODESIZE, "EXTCODESIZE", 1, 1, Environment, Frontier, 0},
		{vm.EXTCODECOPY, "EXTCODECOPY", 4, 0, Environment, Frontier, 0},
		{vm.RETURNDATASIZE, "RETURNDATASIZE", 0, 1, Environment, Byzantium, 211},
		{vm.RETURNDATACOPY, "RETURNDATACOPY", 3, 0, Environment, Byzantium, 211},
		{vm.EXTCODEHASH, "EXTCODEHASH", 1, 1, Environment, Constantinople, 1052},
		{vm.CHAINID, "CHAINID", 0, 1, Environment, Istanbul, 1344},
		{vm.SELFBALANCE, "SELFBALANCE", 0, 1, Environment, Istanbul, 1884},
		{vm.BLOBHASH, "BLOBHASH", 1, 1, Environment, Cancun, 4844},
		{vm.GAS, "GAS", 0, 1, Environment, Frontier, 0},

		{vm.BLOCKHASH, "BLOCKHASH", 1, 1, Block, Frontier, 0},
		{vm.COINBASE, "COINBASE", 0, 1, Block, Frontier, 0},
		{vm.TIMESTAMP, "TIMESTAMP", 0, 1, Block, Frontier, 0},
		{vm.NUMBER, "NUMBER", 0, 1, Block, Frontier, 0},
		{vm.DIFFICULTY, "DIFFICULTY", 0, 1, Block, Frontier, 0},
		{vm.GASLIMIT, "GASLIMIT", 0, 1, Block, Frontier, 0},
		{vm.BASEFEE, "BASEFEE", 0, 1, Block, London, 3198},
		{vm.BLOBBASEFEE, "BLOBBASEFEE", 0, 1, Block, Cancun, 7516},

		{vm.POP, "POP", 1, 0, StackOps, Frontier, 0},
		{vm.PUSH0, "PUSH0", 0, 1, PushOps, Shanghai, 3855},

		{vm.MLOAD, "MLOAD", 1, 1, Memory, Frontier, 0},
		{vm.MSTORE, "MSTORE", 2, 0, Memory, Frontier, 0},
		{vm.MSTORE8, "MSTORE8", 2, 0, Memory, Frontier, 0},
		{vm.MSIZE, "MSIZE", 0, 1, Memory, Frontier, 0},
		{vm.MCOPY, "MCOPY", 3, 0, Memory, Cancun, 5656},

		{vm.SLOAD, "SLOAD", 1, 1, Storage, Frontier, 0},
		{vm.SSTORE, "SSTORE", 2, 0, Storage, Frontier, 0},

		{vm.TLOAD, "TLOAD", 1, 1, Transient, Cancun, 1153},
		{vm.TSTORE, "TSTORE", 2, 0, Transient, Cancun, 1153},

		{vm.JUMP, "JUMP", 1, 0, Flow, Frontier, 0},
		{vm.JUMPI, "JUMPI", 2, 0, Flow, Frontier, 0},
		{vm.PC, "PC", 0, 1, Flow, Frontier, 0},
		{vm.JUMPDEST, "JUMPDEST", 0, 0, Flow, Frontier, 0},

		{vm.CREATE, "CREATE", 3, 1, System, Frontier, 0},
		{vm.CALL, "CALL", 7, 1, System, Frontier, 0},
		{vm.CALLCODE, "CALLCODE", 7, 1, System, Frontier, 0},
		{vm.RETURN, "RETURN", 2, 0, System, Frontier, 0},
		{vm.DELEGATECALL, "DELEGATECALL", 6, 1, System, Homestead, 7},
		{vm.CREATE2, "CREATE2", 4, 1, System, Constantinople, 1014},
		{vm.STATICCALL, "STATICCALL", 6, 1, System, Byzantium, 214},
		{vm.REVERT, "REVERT", 2, 0, System, Byzantium, 140},
		{vm.INVALID, "INVALID", 0, 0, System, Frontier, 0},
		{vm.SELFDESTRUCT, "SELFDESTRUCT", 1, 0, System, Frontier, 0},
	}

	for i := uint(0); i < 32; i++ {
		rows = append(rows, Spec{
			Op:       vm.PUSH1 + vm.OpCode(i),
			Name:     fmt.Sprintf("PUSH%d", i+1),
			Push:     1,
			Category: PushOps,
			Fork:     Frontier,
		})
	}
	for i := uint(0); i < 16; i++ {
		rows = append(rows,
			// DUPn requires n words and leaves n+1; SWAPn requires and leaves
			// n+1. These match the minStack values in go-ethereum's jump
			// tables, which TestStackDeltasMatchGeth relies upon.
			Spec{
				Op:       vm.DUP1 + vm.OpCode(i),
				Name:     fmt.Sprintf("DUP%d", i+1),
				Pop:      i + 1,
				Push:     i + 2,
				Category: DupOps,
				Fork:     Frontier,
			},
			Spec{
				Op:       vm.SWAP1 + vm.OpCode(i),
				Name:     fmt.Sprintf("SWAP%d", i+1),
				Pop:      i + 2,
				Push:     i + 2,
				Category: SwapOps,
				Fork:     Frontier,
			},
		)
	}
	for i := uint(0); i < 5; i++ {
		rows = append(rows, Spec{
			Op:       vm.LOG0 + vm.OpCode(i),
			Name:     fmt.Sprintf("LOG%d", i),
			Pop:      i + 2,
			Category: Log,
			Fork:     Frontier,
		})
	}

	t := make(map[vm.OpCode]Spec, len(rows))
	for _, s := range rows {
		if _, ok := t[s.Op]; ok {
			panic(fmt.Sprintf("duplicate table row for %v", s.Op))
		}
		t[s.Op] = s
	}
	return t
}
