// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// msinspect parses a textual output descriptor and prints its scriptPubKey,
// address, and worst-case satisfaction weight.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/pkt-cash/miniscript/descriptor"
	"github.com/pkt-cash/miniscript/key"
)

type config struct {
	Descriptor string `short:"d" long:"descriptor" description:"Output descriptor to inspect" required:"true"`
	TestNet    bool   `short:"t" long:"testnet" description:"Derive the address against testnet3 instead of mainnet"`
}

func main() {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	if _, errr := parser.Parse(); errr != nil {
		if e, ok := errr.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		os.Exit(1)
	}

	d, err := descriptor.Parse(cfg.Descriptor, key.Parse)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot parse descriptor: %v\n", err)
		os.Exit(1)
	}

	script, err := d.ScriptPubKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build scriptPubKey: %v\n", err)
		os.Exit(1)
	}

	params := &chaincfg.MainNetParams
	if cfg.TestNet {
		params = &chaincfg.TestNet3Params
	}
	addr, err := d.Address(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot derive address: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("kind:     %s\n", d.Kind)
	fmt.Printf("script:   %s\n", hex.EncodeToString(script))
	fmt.Printf("address:  %s\n", addr.EncodeAddress())
	fmt.Printf("max_weight: %d\n", d.MaxSatisfactionWeight())
}
