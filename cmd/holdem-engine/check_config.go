package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lox/holdem-engine/internal/config"
)

// CheckConfigCmd validates a configuration file and prints what it resolved to.
type CheckConfigCmd struct{}

func (c *CheckConfigCmd) Run(g *Globals) error {
	if _, err := os.Stat(g.Config); err != nil {
		return fmt.Errorf("config %s: %w", g.Config, err)
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}

	fmt.Printf("%s: ok\n", g.Config)
	fmt.Printf("store: %s, turn timeout %s, log level %s\n",
		cfg.Store.Kind, cfg.Engine.TurnTimeoutDuration(), cfg.Engine.LogLevel)
	if cfg.NATS != nil {
		fmt.Printf("nats: %s (subjects %s.<table>.<event>)\n", cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	}
	fmt.Printf("rake: %+v\n\n", cfg.RakeCalculator())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tBLINDS\tBUY-IN\tSEATS\tPLAYERS")
	for _, t := range cfg.Tables {
		fmt.Fprintf(w, "%s\t%d/%d\t%d-%d\t%d\t%d\n",
			t.Name, t.SmallBlind, t.BigBlind, t.BuyInMin, t.BuyInMax, t.MaxSeats, t.Players)
	}
	return w.Flush()
}
