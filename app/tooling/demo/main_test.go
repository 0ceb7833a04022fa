package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type counter struct {
	invalid []uint64
	results []bool
}

func (c *counter) BlockMined(index uint64, hash string, attempts uint64) {}

func (c *counter) BlockInvalid(index uint64, err error) {
	c.invalid = append(c.invalid, index)
}

func (c *counter) ChainValidated(valid bool) {
	c.results = append(c.results, valid)
}

// =============================================================================

func Test_Scenario(t *testing.T) {
	t.Log("Given the need to show tampering being detected.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen running the scenario.", testID)
		{
			var cnt counter
			var buf bytes.Buffer

			c := chain.New(1, chain.WithObserver(&cnt))
			if err := scenario(&buf, c); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to run the scenario: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to run the scenario.", success, testID)

			if len(cnt.results) != 2 || !cnt.results[0] || cnt.results[1] {
				t.Fatalf("\t%s\tTest %d:\tShould validate the chain once before and once after tampering: %v", failed, testID, cnt.results)
			}
			t.Logf("\t%s\tTest %d:\tShould validate the chain once before and once after tampering.", success, testID)

			if len(cnt.invalid) != 1 || cnt.invalid[0] != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould report block 1 once: %v", failed, testID, cnt.invalid)
			}
			t.Logf("\t%s\tTest %d:\tShould report block 1 once.", success, testID)

			out := buf.String()
			after := strings.Index(out, "Blockchain after tampering:")
			if after == -1 || !strings.Contains(out[after:], "Tampered Transaction") {
				t.Fatalf("\t%s\tTest %d:\tShould print the tampered chain:\n%s", failed, testID, out)
			}
			t.Logf("\t%s\tTest %d:\tShould print the tampered chain.", success, testID)

			if strings.Count(out, "Is blockchain valid? Yes") != 1 || strings.Count(out, "Is blockchain valid? No") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould print each result once:\n%s", failed, testID, out)
			}
			t.Logf("\t%s\tTest %d:\tShould print each result once.", success, testID)
		}
	}
}
