package vmspec

import (
	"math/big"
	"testing"
)

func TestForkNames(t *testing.T) {
	for _, f := range Forks() {
		name := f.String()
		if name == "" {
			t.Fatalf("Fork(%d).String() empty", uint8(f))
		}
		got, err := ForkByName(name)
		if err != nil {
			t.Fatalf("ForkByName(%q) error %v", name, err)
		}
		if got != f {
			t.Errorf("ForkByName(%q) got %v; want %v", name, got, f)
		}
	}

	if _, err := ForkByName("Atlantis"); err == nil {
		t.Error(`ForkByName("Atlantis") nil error; want unknown-fork error`)
	}
}

func TestForkOrdering(t *testing.T) {
	forks := Forks()
	for i := 1; i < len(forks); i++ {
		prev, f := forks[i-1], forks[i]
		if !prev.Before(f) {
			t.Errorf("%v.Before(%v) false", prev, f)
		}
		if !f.AtLeast(prev) || !f.AtLeast(f) {
			t.Errorf("%v.AtLeast() inconsistent with activation order", f)
		}
	}
	if got, want := forks[len(forks)-1], LatestFork; got != want {
		t.Errorf("last of Forks() is %v; want LatestFork (%v)", got, want)
	}
}

func TestConstraint(t *testing.T) {
	tests := []struct {
		fork Fork
		want string
	}{
		{Frontier, ">=Frontier"},
		{Byzantium, ">=Byzantium"},
		{Shanghai, ">=Shanghai"},
		{Cancun, ">=Cancun"},
	}
	for _, tt := range tests {
		if got := tt.fork.Constraint(); got != tt.want {
			t.Errorf("%v.Constraint() got %q; want %q", tt.fork, got, tt.want)
		}
	}
}

func TestEIPs(t *testing.T) {
	if eips := Frontier.EIPs(); len(eips) != 0 {
		t.Errorf("Frontier.EIPs() got %d entries; want none for the genesis rule set", len(eips))
	}

	tests := []struct {
		fork Fork
		eip  int
	}{
		{Homestead, 7},        // DELEGATECALL
		{Byzantium, 140},      // REVERT
		{Constantinople, 145}, // bitwise shifts
		{Istanbul, 1344},      // CHAINID
		{London, 1559},        // fee market
		{Paris, 4399},         // PREVRANDAO
		{Shanghai, 3855},      // PUSH0
		{Cancun, 4844},        // blob transactions
	}
	for _, tt := range tests {
		var found bool
		for _, e := range tt.fork.EIPs() {
			if e.Number == tt.eip {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%v.EIPs() missing EIP-%d", tt.fork, tt.eip)
		}
	}
}

// Each fork's ChainConfig must activate exactly the upgrades up to and
// including its own, as seen through geth's rule derivation at the execution
// environment used for probes (block 1, timestamp 1000).
func TestChainConfigRules(t *testing.T) {
	for _, f := range Forks() {
		rules := f.ChainConfig().Rules(big.NewInt(1), f.AtLeast(Paris), 1000)

		for _, tt := range []struct {
			fork   Fork
			active bool
		}{
			{Homestead, rules.IsHomestead},
			{TangerineWhistle, rules.IsEIP150},
			{SpuriousDragon, rules.IsEIP158},
			{Byzantium, rules.IsByzantium},
			{Constantinople, rules.IsConstantinople},
			{Petersburg, rules.IsPetersburg},
			{Istanbul, rules.IsIstanbul},
			{Berlin, rules.IsBerlin},
			{London, rules.IsLondon},
			{Paris, rules.IsMerge},
			{Shanghai, rules.IsShanghai},
			{Cancun, rules.IsCancun},
		} {
			if want := f.AtLeast(tt.fork); tt.active != want {
				t.Errorf("%v.ChainConfig(): %v rules active = %t; want %t", f, tt.fork, tt.active, want)
			}
		}
	}
}
