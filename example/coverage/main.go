package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/carbocation/popcov"
	log "github.com/sirupsen/logrus"
)

func main() {
	dbPath := flag.String("db", "", "Reference database (local path or gs://) holding frequencies and epitopes")
	epitopePath := flag.String("epitopes", "", "Epitope TSV (used when -db is not given)")
	freqPath := flag.String("frequencies", "", "Allele frequency TSV (used when -db is not given)")
	iterations := flag.Int("iterations", 100, "Number of bootstrap iterations")
	confidence := flag.Float64("confidence", 0.95, "Confidence level of the bootstrap interval")
	seed := flag.Int64("seed", -1, "Random seed for the bootstrap. Negative draws a fresh seed")
	noBootstrap := flag.Bool("no-bootstrap", false, "Only compute the point estimate")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of parallel bootstrap batches")
	lociFlag := flag.String("loci", "", "Comma-separated loci to include. Defaults to every locus in the inputs")
	samplesPath := flag.String("samples", "", "Optional file to which each bootstrap coverage value is written")
	flag.Parse()

	if *dbPath == "" && (*epitopePath == "" || *freqPath == "") {
		flag.PrintDefaults()
		log.Fatalln("Either -db or both -epitopes and -frequencies are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	epitopes, table, err := loadInputs(ctx, *dbPath, *epitopePath, *freqPath)
	if err != nil {
		log.Fatalln(err)
	}
	log.WithFields(log.Fields{
		"epitopes": len(epitopes),
		"loci":     table.Loci(),
	}).Info("Loaded inputs")

	opts := popcov.DefaultOptions()
	opts.Bootstrap = !*noBootstrap
	opts.Iterations = *iterations
	opts.ConfidenceLevel = *confidence
	opts.Workers = *workers
	if *seed >= 0 {
		s := uint64(*seed)
		opts.RandomSeed = &s
	}
	if *lociFlag != "" {
		known := make(map[string]bool)
		for _, locus := range table.Loci() {
			known[locus] = true
		}
		for _, e := range epitopes {
			known[e.Allele.Locus] = true
		}

		for _, locus := range strings.Split(*lociFlag, ",") {
			locus = strings.TrimSpace(locus)
			if !known[locus] {
				log.WithField("locus", locus).Warn("Locus is absent from the inputs and will contribute no coverage")
			}
			opts.Loci = append(opts.Loci, locus)
		}
	}

	started := time.Now()
	est, err := popcov.ComputePopulationCoverage(ctx, epitopes, table, opts)
	if err != nil {
		log.Fatalln(err)
	}
	log.WithFields(log.Fields{
		"run":     est.RunID,
		"elapsed": time.Since(started),
	}).Info("Finished estimate")

	for locus, c := range est.LocusCoverage {
		fmt.Printf("locus\t%s\t%.6f\n", locus, c)
	}
	fmt.Printf("coverage\t%.6f\n", est.Coverage)

	if est.Interval != nil {
		fmt.Printf("interval\t%.6f\t%.6f\t%g\n", est.Interval.Lower, est.Interval.Upper, est.ConfidenceLevel)
		fmt.Printf("bootstrap\tmean=%.6f\tsd=%.6f\titerations=%d\tseed=%d\n", est.Mean, est.StdDev, est.Iterations, est.Seed)

		if *samplesPath != "" {
			if err := writeSamples(*samplesPath, est.Samples); err != nil {
				log.Fatalln(err)
			}
		}
	}
}

func loadInputs(ctx context.Context, dbPath, epitopePath, freqPath string) ([]popcov.Epitope, *popcov.FrequencyTable, error) {
	if dbPath != "" {
		local, err := popcov.LocalizeFile(ctx, expandHome(dbPath), os.TempDir())
		if err != nil {
			return nil, nil, pfx.Err(err)
		}
		if local != expandHome(dbPath) {
			defer os.Remove(local)
		}

		ref, err := popcov.OpenReferenceDB(local)
		if err != nil {
			return nil, nil, pfx.Err(err)
		}
		defer ref.Close()

		log.WithFields(log.Fields{
			"name":    ref.Metadata.Name,
			"source":  ref.Metadata.Source,
			"created": ref.Metadata.CreationTime,
			"driver":  popcov.WhichSQLiteDriver(),
		}).Info("Opened reference database")

		table, err := ref.FrequencyTable()
		if err != nil {
			return nil, nil, err
		}
		epitopes, err := ref.Epitopes()
		if err != nil {
			return nil, nil, err
		}
		return epitopes, table, nil
	}

	fr, err := popcov.OpenInput(ctx, expandHome(freqPath))
	if err != nil {
		return nil, nil, err
	}
	defer fr.Close()
	records, err := popcov.ReadFrequencyTSV(fr)
	if err != nil {
		return nil, nil, err
	}
	table, err := popcov.NewFrequencyTable(records)
	if err != nil {
		return nil, nil, err
	}

	er, err := popcov.OpenInput(ctx, expandHome(epitopePath))
	if err != nil {
		return nil, nil, err
	}
	defer er.Close()
	epitopes, err := popcov.ReadEpitopeTSV(er)
	if err != nil {
		return nil, nil, err
	}

	return epitopes, table, nil
}

func writeSamples(path string, samples []float64) error {
	f, err := os.Create(expandHome(path))
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	for i, s := range samples {
		if _, err := fmt.Fprintf(f, "%d\t%.8f\n", i, s); err != nil {
			return pfx.Err(err)
		}
	}

	return f.Close()
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}
