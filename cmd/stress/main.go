package main

import (
	"log"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

func main() {
	root := &cobra.Command{
		Use:   "stress",
		Short: "Stress harness for the lock-free toolkit",
		Long: `Drives producer/consumer load against the toolkit's structures and
prints conservation accounting (pushed, popped, retired, freed) at
exit. Every scenario checks that nothing was lost, duplicated, or
freed twice.`,
		SilenceUsage: true,
	}

	root.AddCommand(stackCommand())
	root.AddCommand(queueCommand())
	root.AddCommand(rcuCommand())

	if err := root.Execute(); err != nil {
		log.Fatalf("[stress] %v", err)
	}
}
