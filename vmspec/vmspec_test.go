package vmspec

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/google/go-cmp/cmp"
)

// TestStackDeltasMatchGeth cross-checks every table row, on every fork,
// against the minStack/maxStack values of go-ethereum's jump table for that
// fork. The jump table encodes pop as minStack and push as
// StackLimit + pop - maxStack.
func TestStackDeltasMatchGeth(t *testing.T) {
	for _, fork := range Forks() {
		fork := fork
		t.Run(fork.String(), func(t *testing.T) {
			rules := fork.ChainConfig().Rules(big.NewInt(1), fork.AtLeast(Paris), 1000)
			jt, err := vm.LookupInstructionSet(rules)
			if err != nil {
				t.Fatalf("vm.LookupInstructionSet(%v rules) error %v", fork, err)
			}

			for _, s := range AllAt(fork) {
				min, max := jt[s.Op].Stack()
				pop := uint(min)
				push := uint(int(params.StackLimit) + min - max)
				if pop != s.Pop || push != s.Push {
					t.Errorf("%v: table says pop %d push %d; geth jump table has pop %d push %d", s, s.Pop, s.Push, pop, push)
				}
			}
		})
	}
}

// Opcodes absent from a fork's instruction set must be undefined in geth's
// jump table for that fork; only then is ValidAt trustworthy for fork
// constraints.
func TestValidAtMatchesGeth(t *testing.T) {
	for _, fork := range Forks() {
		fork := fork
		t.Run(fork.String(), func(t *testing.T) {
			rules := fork.ChainConfig().Rules(big.NewInt(1), fork.AtLeast(Paris), 1000)
			jt, err := vm.LookupInstructionSet(rules)
			if err != nil {
				t.Fatalf("vm.LookupInstructionSet(%v rules) error %v", fork, err)
			}

			for _, s := range All() {
				if s.ValidAt(fork) || s.Op == vm.STOP || s.Op == vm.INVALID {
					// STOP and undefined opcodes are indistinguishable via
					// HasCost().
					continue
				}
				if jt[s.Op].HasCost() {
					t.Errorf("%v introduced at %v but defined in %v jump table", s, s.Fork, fork)
				}
			}
		})
	}
}

func TestByOpByNameAgree(t *testing.T) {
	for _, s := range All() {
		byOp, ok := ByOp(s.Op)
		if !ok {
			t.Fatalf("ByOp(%v) not found", s.Op)
		}
		byName, ok := ByName(s.Name)
		if !ok {
			t.Fatalf("ByName(%q) not found", s.Name)
		}
		if diff := cmp.Diff(byOp, byName); diff != "" {
			t.Errorf("ByOp(%v) and ByName(%q) disagree; diff (-op +name):\n%s", s.Op, s.Name, diff)
		}
	}

	if _, ok := ByOp(vm.OpCode(0x0c)); ok {
		t.Error("ByOp(0x0c) found a row for an undefined opcode")
	}
	if _, ok := ByName("NOSUCHOP"); ok {
		t.Error(`ByName("NOSUCHOP") found a row`)
	}
}

func TestMnemonicsMatchGeth(t *testing.T) {
	for _, s := range All() {
		// geth renamed 0x44 to PREVRANDAO; the table keeps the original
		// mnemonic as reference tables and fillers do.
		if s.Op == vm.DIFFICULTY {
			continue
		}
		if got, want := s.Name, s.Op.String(); got != want {
			t.Errorf("%#02x: table mnemonic %q; geth has %q", byte(s.Op), got, want)
		}
	}
}

func TestAllAtNeverShrinks(t *testing.T) {
	var prev int
	for _, fork := range Forks() {
		n := len(AllAt(fork))
		if n < prev {
			t.Errorf("instruction set shrank: %d opcodes at %v, %d at its predecessor", n, fork, prev)
		}
		prev = n
	}
	if got, want := prev, len(All()); got != want {
		t.Errorf("AllAt(%v) has %d rows; All() has %d", LatestFork, got, want)
	}
}

func TestStackDelta(t *testing.T) {
	tests := []struct {
		op        vm.OpCode
		pop, push uint
		ok        bool
	}{
		{vm.ADD, 2, 1, true},
		{vm.ADDMOD, 3, 1, true},
		{vm.PUSH0, 0, 1, true},
		{vm.PUSH32, 0, 1, true},
		{vm.DUP1, 1, 2, true},
		{vm.DUP16, 16, 17, true},
		{vm.SWAP1, 2, 2, true},
		{vm.SWAP16, 17, 17, true},
		{vm.LOG0, 2, 0, true},
		{vm.LOG4, 6, 0, true},
		{vm.CALL, 7, 1, true},
		{vm.OpCode(0x0c), 0, 0, false},
	}

	for _, tt := range tests {
		pop, push, ok := StackDelta(tt.op)
		if pop != tt.pop || push != tt.push || ok != tt.ok {
			t.Errorf("StackDelta(%v) got (%d, %d, %t); want (%d, %d, %t)", tt.op, pop, push, ok, tt.pop, tt.push, tt.ok)
		}
	}
}
