// This program mines a small chain, prints it, tampers with a block and
// shows the chain is no longer valid.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/logger"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New("DEMO")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("demo", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		Difficulty uint   `conf:"default:2"`
		Algorithm  string `conf:"default:sha256"`
	}{}

	const prefix = "DEMO"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	hasher, err := digest.Parse(cfg.Algorithm)
	if err != nil {
		return err
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	c := chain.New(cfg.Difficulty, chain.WithHasher(hasher), chain.WithObserver(chain.EventHandler(ev)))

	return scenario(os.Stdout, c)
}

// scenario records two blocks, prints the chain, tampers with block 1 and
// shows validation catching it.
func scenario(w io.Writer, c *chain.Chain) error {
	c.Append([]string{"Alice -> Bob: 10"})
	c.Append([]string{"Bob -> Charlie: 5", "Charlie -> Dave: 2"})

	fmt.Fprintln(w, "\nBlockchain before tampering:")
	if err := printChain(w, c); err != nil {
		return err
	}

	validate(w, c)

	fmt.Fprintln(w, "\nTampering with blockchain...")
	blk, err := c.Block(1)
	if err != nil {
		return err
	}
	blk.Payload = []string{"Tampered Transaction"}

	fmt.Fprintln(w, "\nBlockchain after tampering:")
	if err := printChain(w, c); err != nil {
		return err
	}

	validate(w, c)

	return nil
}

// validate walks the chain once and prints the result.
func validate(w io.Writer, c *chain.Chain) {
	err := c.ValidateChain()
	if err == nil {
		fmt.Fprintln(w, "\nIs blockchain valid? Yes")
		return
	}

	fmt.Fprintln(w, "\nIs blockchain valid? No")
	fmt.Fprintln(w, err)
}

func printChain(w io.Writer, c *chain.Chain) error {
	data, err := json.MarshalIndent(c.Export(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
