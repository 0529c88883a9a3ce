// Package filler models the YAML test-filler documents consumed by the
// external test-filling toolchain: a named GeneralStateTest template with
// env, pre, transaction and expect sections. The generators in the root
// package populate these documents from executed probe programs.
package filler

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Canonical accounts shared by generated fillers. The sender key/address
// pair is the one used throughout the consensus-test suites.
var (
	Sender       = common.HexToAddress("a94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	Coinbase     = common.HexToAddress("2adc25665018aa1fe0e6bc666dac8fc2697ff9ba")
	ProbeAddress = common.HexToAddress("cccccccccccccccccccccccccccccccccccccccc")
)

// SenderKey is the secret key of Sender, published with the test suites.
const SenderKey = "0x45a915e4d060149eb4365960e6a7a45f334393093061116b197e3240065ff2d8"

// InitialBalance funds the sender and probe accounts in the pre section.
func InitialBalance() *big.Int {
	return big.NewInt(0x0ba1a9ce0ba1a9ce)
}

// Env is a filler's `env` section.
type Env struct {
	CurrentCoinbase   string `yaml:"currentCoinbase"`
	CurrentDifficulty string `yaml:"currentDifficulty"`
	CurrentGasLimit   string `yaml:"currentGasLimit"`
	CurrentNumber     string `yaml:"currentNumber"`
	CurrentTimestamp  string `yaml:"currentTimestamp"`
	CurrentBaseFee    string `yaml:"currentBaseFee"`
	CurrentRandom     string `yaml:"currentRandom"`
}

// An Account is an entry in a filler's `pre` section.
type Account struct {
	Balance string            `yaml:"balance"`
	Code    string            `yaml:"code"`
	Nonce   string            `yaml:"nonce"`
	Storage map[string]string `yaml:"storage"`
}

// Transaction is a filler's `transaction` section. Data, GasLimit and Value
// are arrays, indexed by the expect sections.
type Transaction struct {
	Data      []string `yaml:"data"`
	GasLimit  []string `yaml:"gasLimit"`
	GasPrice  string   `yaml:"gasPrice"`
	Nonce     string   `yaml:"nonce"`
	SecretKey string   `yaml:"secretKey"`
	To        string   `yaml:"to"`
	Value     []string `yaml:"value"`
}

// Indexes selects the transaction Data/GasLimit/Value entries an Expect
// applies to; -1 means all.
type Indexes struct {
	Data  int `yaml:"data"`
	Gas   int `yaml:"gas"`
	Value int `yaml:"value"`
}

// AllIndexes applies an Expect to every transaction variant.
func AllIndexes() Indexes {
	return Indexes{Data: -1, Gas: -1, Value: -1}
}

// An ExpectedAccount is a post-state assertion for one account.
type ExpectedAccount struct {
	Storage map[string]string `yaml:"storage"`
}

// An Expect is one entry of a filler's `expect` section.
type Expect struct {
	Indexes Indexes                    `yaml:"indexes"`
	Network []string                   `yaml:"network"`
	Result  map[string]ExpectedAccount `yaml:"result"`
}

// A Doc is a complete single-test filler.
type Doc struct {
	Name        string
	Env         Env
	Pre         map[string]Account
	Transaction Transaction
	Expect      []Expect
	// ExpectException, when non-empty, maps a network constraint to the
	// exception the filled test must raise, e.g. ">=Frontier" to
	// "StackUnderflow".
	ExpectException map[string]string
}

// New returns a Doc with the canonical env, pre and transaction sections:
// the funded sender calls the probe account, which carries `code`, with
// `callData`. The expect section is the caller's to fill.
func New(name string, code, callData []byte) *Doc {
	return &Doc{
		Name: name,
		Env: Env{
			CurrentCoinbase:   AddressHex(Coinbase),
			CurrentDifficulty: "0x20000",
			CurrentGasLimit:   "0x26e1f476fe1e22",
			CurrentNumber:     "1",
			CurrentTimestamp:  "1000",
			CurrentBaseFee:    "0x0a",
			CurrentRandom:     "0x20000",
		},
		Pre: map[string]Account{
			AddressHex(ProbeAddress): {
				Balance: ValueHex(InitialBalance()),
				Code:    RawCode(code),
				Nonce:   "0",
				Storage: map[string]string{},
			},
			AddressHex(Sender): {
				Balance: ValueHex(InitialBalance()),
				Code:    "",
				Nonce:   "0",
				Storage: map[string]string{},
			},
		},
		Transaction: Transaction{
			Data:      []string{BytesHex(callData)},
			GasLimit:  []string{"0x01c9c380"},
			GasPrice:  "0x0a",
			Nonce:     "0x00",
			SecretKey: SenderKey,
			To:        AddressHex(ProbeAddress),
			Value:     []string{"0x00"},
		},
	}
}

// docBody mirrors Doc for encoding, nested under the test name.
type docBody struct {
	Env             Env                `yaml:"env"`
	Pre             map[string]Account `yaml:"pre"`
	Transaction     Transaction        `yaml:"transaction"`
	Expect          []Expect           `yaml:"expect,omitempty"`
	ExpectException map[string]string  `yaml:"expectException,omitempty"`
}

// Encode writes the document as YAML, keyed by its name.
func (d *Doc) Encode(w io.Writer) error {
	if d.Name == "" {
		return fmt.Errorf("%T with empty name", d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()

	return enc.Encode(map[string]docBody{
		d.Name: {
			Env:             d.Env,
			Pre:             d.Pre,
			Transaction:     d.Transaction,
			Expect:          d.Expect,
			ExpectException: d.ExpectException,
		},
	})
}

// YAML returns the document as YAML bytes.
func (d *Doc) YAML() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RawCode renders contract code the way fillers expect it, with the `:raw`
// prefix that bypasses the filling tool's compilers. Empty code renders
// empty.
func RawCode(code []byte) string {
	if len(code) == 0 {
		return ""
	}
	return fmt.Sprintf(":raw 0x%x", code)
}

// AddressHex renders an address as lower-case 0x-prefixed hex.
func AddressHex(a common.Address) string {
	return fmt.Sprintf("0x%x", a[:])
}

// BytesHex renders arbitrary bytes as 0x-prefixed hex; nil renders "0x".
func BytesHex(b []byte) string {
	return fmt.Sprintf("0x%x", b)
}

// ValueHex renders a non-negative integer as 0x-prefixed hex.
func ValueHex(v *big.Int) string {
	return fmt.Sprintf("0x%x", v)
}

// SlotHex renders a storage slot number.
func SlotHex(slot uint64) string {
	return fmt.Sprintf("0x%02x", slot)
}

// WordHex renders a storage word with leading zeroes stripped.
func WordHex(h common.Hash) string {
	return fmt.Sprintf("0x%x", new(big.Int).SetBytes(h[:]))
}
