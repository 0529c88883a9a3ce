package runopts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/solidifylabs/fillgen/vmspec"
)

func TestOptions(t *testing.T) {
	sdb, err := NewMemoryState()
	if err != nil {
		t.Fatalf("NewMemoryState() error %v", err)
	}
	random := common.BigToHash(big.NewInt(0x20000))
	cfg := &Configuration{StateDB: sdb}
	cfg.BlockCtx.Random = &random

	var (
		sender   = common.HexToAddress("0x1111")
		contract = common.HexToAddress("0x2222")
		funded   = common.HexToAddress("0x3333")
	)
	opts := []Option{
		ReadOnly(),
		Gas(12345),
		Sender(sender),
		Contract(contract),
		Fork(vmspec.Berlin),
		Account(funded, big.NewInt(1000), []byte{0x00}),
	}
	for _, o := range opts {
		if err := o.Apply(cfg); err != nil {
			t.Fatalf("%T.Apply() error %v", o, err)
		}
	}

	if !cfg.ReadOnly {
		t.Error("ReadOnly() not applied")
	}
	if cfg.Gas != 12345 {
		t.Errorf("Gas() got %d; want 12345", cfg.Gas)
	}
	if cfg.Sender != sender || cfg.TxCtx.Origin != sender {
		t.Errorf("Sender() got frame caller %v origin %v; want %v for both", cfg.Sender, cfg.TxCtx.Origin, sender)
	}
	if cfg.Contract != contract {
		t.Errorf("Contract() got %v; want %v", cfg.Contract, contract)
	}

	if cfg.ChainConfig.BerlinBlock == nil || cfg.ChainConfig.LondonBlock != nil {
		t.Errorf("Fork(%v) config activates Berlin=%v London=%v", vmspec.Berlin, cfg.ChainConfig.BerlinBlock, cfg.ChainConfig.LondonBlock)
	}
	if cfg.BlockCtx.Random != nil {
		t.Errorf("Fork(%v) kept the post-merge RANDOM digest", vmspec.Berlin)
	}

	if got, want := cfg.StateDB.GetBalance(funded), uint256.NewInt(1000); got.Cmp(want) != 0 {
		t.Errorf("Account() balance got %v; want %v", got, want)
	}
	if got := cfg.StateDB.GetCode(funded); len(got) != 1 {
		t.Errorf("Account() code got %#x; want 1 byte", got)
	}

	overflowing := new(big.Int).Lsh(big.NewInt(1), 256)
	if err := Account(funded, overflowing, nil).Apply(cfg); err == nil {
		t.Errorf("Account(%v, 2^256, nil).Apply() nil error; want overflow", funded)
	}
}

func TestCapture(t *testing.T) {
	cfg := &Configuration{Gas: 42}

	gas := Capture(func(c *Configuration) uint64 { return c.Gas })
	if err := gas.Apply(cfg); err != nil {
		t.Fatalf("%T.Apply() error %v", gas, err)
	}
	if gas.Val != 42 {
		t.Errorf("captured Gas %d; want 42", gas.Val)
	}

	all := CaptureConfig()
	if err := all.Apply(cfg); err != nil {
		t.Fatalf("%T.Apply() error %v", all, err)
	}
	if all.Val != cfg {
		t.Error("CaptureConfig() did not capture the applied Configuration")
	}
}
