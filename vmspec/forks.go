package vmspec

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// A Fork identifies a network upgrade. Forks are ordered by activation so
// they can be compared directly.
type Fork uint8

const (
	Frontier Fork = iota
	Homestead
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Paris
	Shanghai
	Cancun

	numForks
)

// LatestFork is the most recent upgrade known to the opcode table. Probes run
// on it unless configured otherwise.
const LatestFork = Cancun

var forkNames = [numForks]string{
	Frontier:         "Frontier",
	Homestead:        "Homestead",
	TangerineWhistle: "TangerineWhistle",
	SpuriousDragon:   "SpuriousDragon",
	Byzantium:        "Byzantium",
	Constantinople:   "Constantinople",
	Petersburg:       "Petersburg",
	Istanbul:         "Istanbul",
	Berlin:           "Berlin",
	London:           "London",
	Paris:            "Paris",
	Shanghai:         "Shanghai",
	Cancun:           "Cancun",
}

// String returns the fork's canonical name.
func (f Fork) String() string {
	if f >= numForks {
		return fmt.Sprintf("Fork(%d)", uint8(f))
	}
	return forkNames[f]
}

// ForkByName returns the Fork with the given canonical name.
func ForkByName(name string) (Fork, error) {
	for f := Frontier; f < numForks; f++ {
		if forkNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown fork %q", name)
}

// Forks returns all known forks in activation order.
func Forks() []Fork {
	fs := make([]Fork, numForks)
	for i := range fs {
		fs[i] = Fork(i)
	}
	return fs
}

// Before reports whether f activates strictly before other.
func (f Fork) Before(other Fork) bool { return f < other }

// AtLeast reports whether f is other or any later fork.
func (f Fork) AtLeast(other Fork) bool { return f >= other }

// Constraint returns the fork as a test-filler network constraint, e.g.
// ">=Shanghai". Frontier, being the genesis rule set, has no lower bound.
func (f Fork) Constraint() string {
	if f == Frontier {
		return ">=Frontier"
	}
	return ">=" + f.String()
}

// An EIP is an entry in a network upgrade's inclusion list.
type EIP struct {
	Number int
	Title  string
}

var forkEIPs = map[Fork][]EIP{
	Homestead: {
		{2, "Homestead hard-fork changes"},
		{7, "DELEGATECALL"},
		{8, "devp2p forward compatibility"},
	},
	TangerineWhistle: {
		{150, "Gas cost changes for IO-heavy operations"},
	},
	SpuriousDragon: {
		{155, "Simple replay attack protection"},
		{160, "EXP cost increase"},
		{161, "State trie clearing"},
		{170, "Contract code size limit"},
	},
	Byzantium: {
		{100, "Difficulty adjustment with uncles"},
		{140, "REVERT instruction"},
		{196, "Elliptic curve addition and scalar multiplication precompiles"},
		{197, "Elliptic curve pairing check precompile"},
		{198, "Big integer modular exponentiation precompile"},
		{211, "RETURNDATASIZE and RETURNDATACOPY"},
		{214, "STATICCALL"},
		{649, "Difficulty bomb delay and block reward reduction"},
		{658, "Transaction status code in receipts"},
	},
	Constantinople: {
		{145, "Bitwise shifting instructions"},
		{1014, "CREATE2"},
		{1052, "EXTCODEHASH"},
		{1234, "Difficulty bomb delay and block reward adjustment"},
		{1283, "Net gas metering for SSTORE"},
	},
	Petersburg: {
		{1716, "Removal of EIP-1283 net gas metering"},
	},
	Istanbul: {
		{152, "BLAKE2 compression precompile"},
		{1108, "Reduced alt_bn128 precompile gas costs"},
		{1344, "CHAINID"},
		{1884, "Repricing for trie-size-dependent opcodes; SELFBALANCE"},
		{2028, "Calldata gas cost reduction"},
		{2200, "Structured definitions for net gas metering"},
	},
	Berlin: {
		{2565, "ModExp gas cost"},
		{2718, "Typed transaction envelope"},
		{2929, "Gas cost increases for state access opcodes"},
		{2930, "Optional access lists"},
	},
	London: {
		{1559, "Fee market change"},
		{3198, "BASEFEE"},
		{3529, "Reduction in refunds"},
		{3541, "Reject code starting with the 0xEF byte"},
	},
	Paris: {
		{3675, "Upgrade consensus to proof-of-stake"},
		{4399, "Supplant DIFFICULTY with PREVRANDAO"},
	},
	Shanghai: {
		{3651, "Warm COINBASE"},
		{3855, "PUSH0"},
		{3860, "Limit and meter initcode"},
		{4895, "Beacon chain withdrawals as operations"},
	},
	Cancun: {
		{1153, "Transient storage opcodes"},
		{4788, "Beacon block root in the EVM"},
		{4844, "Shard blob transactions"},
		{5656, "MCOPY"},
		{6780, "SELFDESTRUCT only in same transaction"},
		{7516, "BLOBBASEFEE"},
	},
}

// EIPs returns the inclusion list of the upgrade, in EIP-number order as
// recorded. Frontier returns nil as it predates the EIP process.
func (f Fork) EIPs() []EIP {
	return forkEIPs[f]
}

// ChainConfig returns a params.ChainConfig activating every upgrade up to and
// including f, from genesis. The returned config is owned by the caller.
func (f Fork) ChainConfig() *params.ChainConfig {
	zero := big.NewInt(0)
	c := &params.ChainConfig{ChainID: big.NewInt(1)}

	if f.AtLeast(Homestead) {
		c.HomesteadBlock = zero
	}
	if f.AtLeast(TangerineWhistle) {
		c.EIP150Block = zero
	}
	if f.AtLeast(SpuriousDragon) {
		c.EIP155Block = zero
		c.EIP158Block = zero
	}
	if f.AtLeast(Byzantium) {
		c.ByzantiumBlock = zero
	}
	if f.AtLeast(Constantinople) {
		c.ConstantinopleBlock = zero
		if f.Before(Petersburg) {
			// A nil PetersburgBlock inherits Constantinople's activation,
			// so pin it beyond any reachable block height.
			c.PetersburgBlock = new(big.Int).Lsh(big.NewInt(1), 64)
		}
	}
	if f.AtLeast(Petersburg) {
		c.PetersburgBlock = zero
	}
	if f.AtLeast(Istanbul) {
		c.IstanbulBlock = zero
	}
	if f.AtLeast(Berlin) {
		c.BerlinBlock = zero
	}
	if f.AtLeast(London) {
		c.LondonBlock = zero
	}
	if f.AtLeast(Paris) {
		c.MergeNetsplitBlock = zero
		c.TerminalTotalDifficulty = zero
		c.TerminalTotalDifficultyPassed = true
	}
	if f.AtLeast(Shanghai) {
		c.ShanghaiTime = new(uint64)
	}
	if f.AtLeast(Cancun) {
		c.CancunTime = new(uint64)
	}
	return c
}
