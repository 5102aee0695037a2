package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rapidmidiex/rmxpiano"
	"github.com/rapidmidiex/rmxpiano/config"
)

var (
	configVar string
	feedVar   string
)

func init() {
	flag.StringVar(&configVar, "config", "", "Path to an INI config file")
	flag.StringVar(&feedVar, "feed", "", "Serve the piano state feed on this address, ex: :8000")

	flag.Parse()
}

func main() {
	cfg, err := config.Load(configVar)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if feedVar != "" {
		cfg.Feed.Addr = feedVar
	}

	rmxpiano.Main(configVar, cfg)
}
