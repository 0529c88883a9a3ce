package fillgen

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/solidifylabs/fillgen/filler"
	"github.com/solidifylabs/fillgen/runopts"
	"github.com/solidifylabs/fillgen/vmspec"
)

func TestRun(t *testing.T) {
	type test struct {
		name     string
		code     Code
		callData []byte
		want     []byte
	}

	tests := []test{
		{
			name: "echo calldata",
			code: Code{
				CALLDATASIZE, PUSH(0), PUSH(0), CALLDATACOPY,
				CALLDATASIZE, PUSH(0), RETURN,
			},
			callData: []byte{0xde, 0xca, 0xfb, 0xad},
			want:     []byte{0xde, 0xca, 0xfb, 0xad},
		},
		{
			name: "return sum",
			code: Code{
				Fn(MSTORE, PUSH(0), Fn(ADD, PUSH(2), PUSH(3))),
				Fn(RETURN, PUSH(0), PUSH(32)),
			},
			want: common.BigToHash(big.NewInt(5)).Bytes(),
		},
		{
			name: "stop returns nothing",
			code: Code{Fn(POP, PUSH(1)), STOP},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.code.Run(tt.callData)
			if err != nil {
				t.Fatalf("%T.Run(%#x) error %v", tt.code, tt.callData, err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("%T.Run(%#x) diff (-want +got):\n%s", tt.code, tt.callData, diff)
			}
		})
	}
}

func TestRunCapturesStorage(t *testing.T) {
	sdb := runopts.CaptureStateDB()
	code := Code{Fn(SSTORE, PUSH(0), PUSH(uint64(0x5a5a)))}

	if _, err := code.Run(nil, sdb); err != nil {
		t.Fatalf("%T.Run(nil) error %v", code, err)
	}

	got := sdb.Val.GetState(filler.ProbeAddress, common.Hash{})
	if want := common.HexToHash("0x5a5a"); got != want {
		t.Errorf("storage slot 0 after SSTORE got %v; want %v", got, want)
	}
}

func TestExecutionErrors(t *testing.T) {
	t.Run("stack underflow", func(t *testing.T) {
		code := Code{Raw{byte(vm.ADD)}}
		_, err := code.Run(nil)
		if !IsStackUnderflow(err) {
			t.Errorf("%T.Run(nil) error %v; want stack underflow", code, err)
		}
	})

	t.Run("revert", func(t *testing.T) {
		code := Code{Fn(REVERT, PUSH(0), PUSH(0))}
		_, err := code.Run(nil)

		var ee *ExecutionError
		if !errors.As(err, &ee) || !ee.Reverted() {
			t.Errorf("%T.Run(nil) error %v; want wrapped %v", code, err, vm.ErrExecutionReverted)
		}
	})

	t.Run("invalid opcode", func(t *testing.T) {
		code := Code{INVALID}
		_, err := code.Run(nil)
		if !IsInvalidOpCode(err) {
			t.Errorf("%T.Run(nil) error %v; want invalid opcode", code, err)
		}
	})

	t.Run("write protection", func(t *testing.T) {
		code := Code{Fn(SSTORE, PUSH(0), PUSH(1))}
		_, err := code.Run(nil, runopts.ReadOnly())
		if !errors.Is(err, vm.ErrWriteProtection) {
			t.Errorf("%T.Run(nil, ReadOnly) error %v; want %v", code, err, vm.ErrWriteProtection)
		}
	})
}

// Fork() must swap the full instruction set, not just gas costs.
func TestRunOnOlderFork(t *testing.T) {
	code := Code{Raw{byte(vm.PUSH0)}, SetDepth(1), PUSH(0), SSTORE}

	if _, err := code.Run(nil); err != nil {
		t.Fatalf("%T.Run(nil) on %v error %v", code, vmspec.LatestFork, err)
	}

	_, err := code.Run(nil, runopts.Fork(vmspec.London))
	if !IsInvalidOpCode(err) {
		t.Errorf("%T.Run(nil) with PUSH0 on %v error %v; want invalid opcode", code, vmspec.London, err)
	}
}

func TestSenderAndContractOptions(t *testing.T) {
	var (
		sender   = common.HexToAddress("0x1111")
		contract = common.HexToAddress("0x2222")
	)
	code := Code{
		Fn(MSTORE, PUSH(0), CALLER),
		Fn(MSTORE, PUSH(32), ADDRESS),
		Fn(RETURN, PUSH(0), PUSH(64)),
	}

	out, err := code.Run(nil, runopts.Sender(sender), runopts.Contract(contract))
	if err != nil {
		t.Fatalf("%T.Run(nil) error %v", code, err)
	}
	if got, want := common.BytesToAddress(out[:32]), sender; got != want {
		t.Errorf("CALLER got %v; want %v", got, want)
	}
	if got, want := common.BytesToAddress(out[32:]), contract; got != want {
		t.Errorf("ADDRESS got %v; want %v", got, want)
	}
}
