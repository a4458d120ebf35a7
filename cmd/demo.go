package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/Blimpyway/sdr-machine/internal/dyadic"
	"github.com/Blimpyway/sdr-machine/internal/sdr"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Store and recall a handful of random SDR pairs on a dyadic memory",
	Long: `demo builds a small dyadic memory, stores a few random (x, y)
pairs, then queries each x back and prints the overlap with the original y
so the recall behavior can be seen without writing a benchmark.`,
	RunE: runDemo,
}

var (
	demoN     int
	demoP     int
	demoPairs int
	demoSeed  uint64
)

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoN, "n", 100, "SDR universe size N")
	demoCmd.Flags().IntVar(&demoP, "p", 8, "on-bits per SDR (P)")
	demoCmd.Flags().IntVar(&demoPairs, "pairs", 5, "number of (x, y) pairs to store")
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 1, "PCG seed")
}

func runDemo(cmd *cobra.Command, args []string) error {
	mem, err := dyadic.New(demoN, demoP)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(demoSeed, demoSeed))
	xs := sdr.RandomN(rng, demoPairs, demoN, demoP)
	ys := sdr.RandomN(rng, demoPairs, demoN, demoP)

	for i := range xs {
		if err := mem.Store(xs[i], ys[i]); err != nil {
			return fmt.Errorf("store pair %d: %w", i, err)
		}
	}

	fmt.Printf("stored %d pairs into a dyadic memory (N=%d, P=%d)\n\n", demoPairs, demoN, demoP)
	for i := range xs {
		got, err := mem.Query(xs[i])
		if err != nil {
			return fmt.Errorf("query pair %d: %w", i, err)
		}
		overlap := sdr.Overlap(got, ys[i])
		fmt.Printf("pair %d: x=%v\n  stored y=%v\n  recalled=%v\n  overlap=%d/%d\n\n", i, xs[i], ys[i], got, overlap, demoP)
	}
	return nil
}
