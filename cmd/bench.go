package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Blimpyway/sdr-machine/internal/dyadic"
	"github.com/Blimpyway/sdr-machine/internal/idslot"
	"github.com/Blimpyway/sdr-machine/internal/runlog"
	"github.com/Blimpyway/sdr-machine/internal/sdr"
	"github.com/Blimpyway/sdr-machine/internal/store"
	"github.com/Blimpyway/sdr-machine/internal/triadic"
	"github.com/Blimpyway/sdr-machine/internal/valuemap"
	"github.com/spf13/cobra"
)

var (
	benchN             int
	benchP             int
	benchSeed          uint64
	benchSamples       int
	benchCheckpointDir string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run recall/throughput benchmarks against each memory engine",
	Long: `bench exercises the dyadic, triadic, bit-pair value, and ID-slot
memories at a scale large enough to report a recall rate and a
stores-per-second throughput figure.`,
}

var benchDyadicCmd = &cobra.Command{
	Use:   "dyadic",
	Short: "Benchmark sequence recall on the dyadic memory",
	RunE:  runBenchDyadic,
}

var benchTriadicCmd = &cobra.Command{
	Use:   "triadic",
	Short: "Benchmark symmetric recall on the triadic memory",
	RunE:  runBenchTriadic,
}

var benchValueMapCmd = &cobra.Command{
	Use:   "valuemap",
	Short: "Benchmark the bit-pair value map's add/score pipeline",
	RunE:  runBenchValueMap,
}

var benchIDSlotCmd = &cobra.Command{
	Use:   "idslot",
	Short: "Benchmark heavy-hitter recall on the ID-slot table",
	RunE:  runBenchIDSlot,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.AddCommand(benchDyadicCmd, benchTriadicCmd, benchValueMapCmd, benchIDSlotCmd)

	benchCmd.PersistentFlags().IntVar(&benchN, "n", 1000, "SDR universe size N")
	benchCmd.PersistentFlags().IntVar(&benchP, "p", 10, "on-bits per SDR (P)")
	benchCmd.PersistentFlags().Uint64Var(&benchSeed, "seed", 1, "PCG seed")
	benchCmd.PersistentFlags().IntVar(&benchSamples, "samples", 100_000, "number of random SDR samples")
	benchCmd.PersistentFlags().StringVar(&benchCheckpointDir, "checkpoint-dir", "", "if set, save a raw-table checkpoint here after the run completes")
}

// saveCheckpoint writes a raw-table checkpoint under --checkpoint-dir when
// the flag is set, and is a no-op otherwise. save does the engine-specific
// work of building the manifest and calling the matching FSStore.Save*Table.
func saveCheckpoint(runID string, save func(*store.FSStore) error) error {
	if benchCheckpointDir == "" {
		return nil
	}
	fs, err := store.NewFSStore(benchCheckpointDir)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := save(fs); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	slog.Info("checkpoint saved", "run_id", runID, "dir", benchCheckpointDir)
	return nil
}

// runBenchDyadic reproduces scenario S4: store (x_i, x_i+1) pairs from a
// sequence of independently drawn random SDRs and report the recall rate
// within one bit.
func runBenchDyadic(cmd *cobra.Command, args []string) error {
	runID := runlog.NewRunID()
	rng := rand.New(rand.NewPCG(benchSeed, benchSeed^0x9E3779B97F4A7C15))

	mem, err := dyadic.New(benchN, benchP)
	if err != nil {
		return err
	}

	samples := sdr.RandomN(rng, benchSamples+1, benchN, benchP)

	start := time.Now()
	for i := 0; i < benchSamples; i++ {
		if err := mem.Store(samples[i], samples[i+1]); err != nil {
			return fmt.Errorf("store %d: %w", i, err)
		}
	}
	storeElapsed := time.Since(start)

	hits := 0
	queryStart := time.Now()
	for i := 0; i < benchSamples; i++ {
		got, err := mem.Query(samples[i])
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		if sdr.Overlap(got, samples[i+1]) >= benchP-1 {
			hits++
		}
	}
	queryElapsed := time.Since(queryStart)

	recall := float64(hits) / float64(benchSamples)
	slog.Info("dyadic bench complete",
		"run_id", runID,
		"n", benchN, "p", benchP, "samples", benchSamples,
		"recall", fmt.Sprintf("%.4f", recall),
		"stores_per_sec", fmt.Sprintf("%.0f", float64(benchSamples)/storeElapsed.Seconds()),
		"queries_per_sec", fmt.Sprintf("%.0f", float64(benchSamples)/queryElapsed.Seconds()),
	)
	fmt.Printf("dyadic: recall=%.4f over %d samples (store %s, query %s)\n", recall, benchSamples, storeElapsed, queryElapsed)

	return saveCheckpoint(runID, func(fs *store.FSStore) error {
		raw := mem.RawTable()
		m := &store.Manifest{
			RunID: runID, Kind: store.KindDyadic,
			N: benchN, P: benchP,
			ElemBytes: 1, ElemCount: len(raw),
			Timestamp: time.Now(),
		}
		return fs.SaveRawTable(m, raw)
	})
}

// runBenchTriadic reproduces scenario S2's shape at benchmark scale: store
// (x,y,z) triples and recover each operand from the other two.
func runBenchTriadic(cmd *cobra.Command, args []string) error {
	runID := runlog.NewRunID()
	rng := rand.New(rand.NewPCG(benchSeed, benchSeed^0x632BE59BD9B4E019))

	mem, err := triadic.New(benchN, benchP)
	if err != nil {
		return err
	}

	n := min(benchSamples, 20_000) // triadic tables are O(N^3); keep this bounded
	xs := sdr.RandomN(rng, n, benchN, benchP)
	ys := sdr.RandomN(rng, n, benchN, benchP)
	zs := sdr.RandomN(rng, n, benchN, benchP)

	start := time.Now()
	for i := 0; i < n; i++ {
		if err := mem.Store(xs[i], ys[i], zs[i]); err != nil {
			return fmt.Errorf("store %d: %w", i, err)
		}
	}
	storeElapsed := time.Since(start)

	hits := 0
	for i := 0; i < n; i++ {
		got, err := mem.Query(nil, ys[i], zs[i])
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		if sdr.Overlap(got, xs[i]) >= benchP-1 {
			hits++
		}
	}

	recall := float64(hits) / float64(n)
	slog.Info("triadic bench complete",
		"run_id", runID,
		"n", benchN, "p", benchP, "samples", n,
		"recall", fmt.Sprintf("%.4f", recall),
		"stores_per_sec", fmt.Sprintf("%.0f", float64(n)/storeElapsed.Seconds()),
	)
	fmt.Printf("triadic: recall=%.4f over %d samples (store %s)\n", recall, n, storeElapsed)

	return saveCheckpoint(runID, func(fs *store.FSStore) error {
		raw := mem.RawTable()
		m := &store.Manifest{
			RunID: runID, Kind: store.KindTriadic,
			N: benchN, P: benchP,
			ElemBytes: 1, ElemCount: len(raw),
			Timestamp: time.Now(),
		}
		return fs.SaveRawTable(m, raw)
	})
}

// runBenchValueMap reproduces scenario S3 at the configured N, reporting
// score/mean consistency.
func runBenchValueMap(cmd *cobra.Command, args []string) error {
	runID := runlog.NewRunID()

	m, err := valuemap.New(valuemap.WithSDRSize(benchN))
	if err != nil {
		return err
	}

	s := []int{0, 10, 20, 30, 40, 50, 60}
	if benchN < 61 {
		return fmt.Errorf("--n must be at least 61 to run the valuemap scenario")
	}

	pairsAdded, total := m.Add(s, 5)
	score, err := m.Score(s)
	if err != nil {
		return err
	}

	slog.Info("valuemap bench complete",
		"run_id", runID,
		"n", benchN, "pairs_added", pairsAdded, "running_total", total,
		"score", score, "mean", m.Mean(),
	)
	fmt.Printf("valuemap: score=%.4f mean=%.6f (map size %d)\n", score, m.Mean(), m.Size())

	return saveCheckpoint(runID, func(fs *store.FSStore) error {
		raw := m.RawTable()
		manifest := &store.Manifest{
			RunID: runID, Kind: store.KindValueMap,
			N: benchN, ElemBytes: 4, ElemCount: len(raw),
			Timestamp: time.Now(),
		}
		return fs.SaveInt32Table(manifest, raw)
	})
}

// runBenchIDSlot reproduces scenario S5: store N distinct (sdr, id) pairs
// and query truncated probes, reporting the top-8 hit rate.
func runBenchIDSlot(cmd *cobra.Command, args []string) error {
	runID := runlog.NewRunID()
	rng := rand.New(rand.NewPCG(benchSeed, benchSeed^0x2545F4914F6CDD1D))

	const (
		slotSize = 112
		probeLen = 16
		topK     = 8
	)
	n := min(benchSamples, 20_000)
	memBytes := n / 4 * slotSize * 4 // roughly n/4 slots, generous headroom

	tbl, err := idslot.New(memBytes, slotSize)
	if err != nil {
		return err
	}

	samples := sdr.RandomN(rng, n, benchN, benchP)

	start := time.Now()
	for i, s := range samples {
		if err := tbl.Store(s, uint32(i+1)); err != nil {
			return fmt.Errorf("store %d: %w", i, err)
		}
	}
	storeElapsed := time.Since(start)

	hits := 0
	for i, s := range samples {
		probe := s[:min(probeLen, len(s))]
		results, err := tbl.Query(probe, 1)
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		want := uint32(i + 1)
		for rank, h := range results {
			if rank >= topK {
				break
			}
			if h.ID == want {
				hits++
				break
			}
		}
	}

	rate := float64(hits) / float64(n)
	slog.Info("idslot bench complete",
		"run_id", runID,
		"n", benchN, "p", benchP, "samples", n, "slots", tbl.NumSlots(),
		"top8_hit_rate", fmt.Sprintf("%.4f", rate),
		"stores_per_sec", fmt.Sprintf("%.0f", float64(n)/storeElapsed.Seconds()),
	)
	fmt.Printf("idslot: top-%d hit rate=%.4f over %d samples (store %s)\n", topK, rate, n, storeElapsed)

	return saveCheckpoint(runID, func(fs *store.FSStore) error {
		raw := tbl.RawTable()
		manifest := &store.Manifest{
			RunID: runID, Kind: store.KindIDSlot,
			N: benchN, P: benchP,
			SlotSize: tbl.SlotSize(), NumSlots: tbl.NumSlots(),
			ElemBytes: 4, ElemCount: len(raw),
			Timestamp: time.Now(),
		}
		return fs.SaveUint32Table(manifest, raw)
	})
}
