package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/google/go-cmp/cmp"
)

type sliceReturner []byte

func (s sliceReturner) ToPush() []byte { return []byte(s) }

func TestBytecoderFromStackPusher(t *testing.T) {
	type test struct {
		name    string
		push    []byte
		want    []byte
		wantErr bool
	}

	word := append([]byte{0xff}, make([]byte, 31)...)

	tests := []test{
		{
			name: "single byte",
			push: []byte{0x2c},
			want: []byte{byte(vm.PUSH1), 0x2c},
		},
		{
			name: "leading zeroes stripped",
			push: []byte{0x00, 0x00, 0x12, 0x34},
			want: []byte{byte(vm.PUSH2), 0x12, 0x34},
		},
		{
			name: "full word",
			push: word,
			want: append([]byte{byte(vm.PUSH32)}, word...),
		},
		{
			// PUSH0 only exists from Shanghai, so zero buffers must not
			// compile to it.
			name: "all zeroes",
			push: []byte{0x00, 0x00},
			want: []byte{byte(vm.PUSH1), 0x00},
		},
		{
			name:    "empty",
			push:    nil,
			wantErr: true,
		},
		{
			name:    "too long",
			push:    make([]byte, 33),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BytecoderFromStackPusher(sliceReturner(tt.push)).Bytecode()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Bytecode() of %d-byte push: nil error", len(tt.push))
				}
				return
			}
			if err != nil {
				t.Fatalf("Bytecode() error %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Bytecode() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpCode(t *testing.T) {
	got, err := OpCode(vm.ADD).Bytecode()
	if err != nil {
		t.Fatalf("%T.Bytecode() error %v", OpCode(vm.ADD), err)
	}
	if diff := cmp.Diff([]byte{byte(vm.ADD)}, got); diff != "" {
		t.Errorf("%T.Bytecode() diff (-want +got):\n%s", OpCode(vm.ADD), diff)
	}
	if got, want := OpCode(vm.ADD).String(), "ADD"; got != want {
		t.Errorf("String() got %q; want %q", got, want)
	}
}
