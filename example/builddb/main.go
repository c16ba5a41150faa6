package main

import (
	"context"
	"flag"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/popcov"
	log "github.com/sirupsen/logrus"
)

func main() {
	epitopePath := flag.String("epitopes", "", "Epitope TSV (local path or gs://, optionally .gz or .zst)")
	freqPath := flag.String("frequencies", "", "Allele frequency TSV (local path or gs://, optionally .gz or .zst)")
	out := flag.String("out", "", "Filename of the reference database to create")
	name := flag.String("name", "", "Name recorded in the database metadata")
	flag.Parse()

	if *epitopePath == "" || *freqPath == "" || *out == "" {
		flag.PrintDefaults()
		log.Fatalln("-epitopes, -frequencies and -out are all required")
	}

	*out = expandHome(*out)
	if _, err := os.Stat(*out); err == nil {
		log.Fatalf("%s already exists\n", *out)
	}

	ctx := context.Background()

	fr, err := popcov.OpenInput(ctx, expandHome(*freqPath))
	if err != nil {
		log.Fatalln(err)
	}
	records, err := popcov.ReadFrequencyTSV(fr)
	fr.Close()
	if err != nil {
		log.Fatalln(err)
	}
	table, err := popcov.NewFrequencyTable(records)
	if err != nil {
		log.Fatalln(err)
	}

	er, err := popcov.OpenInput(ctx, expandHome(*epitopePath))
	if err != nil {
		log.Fatalln(err)
	}
	epitopes, err := popcov.ReadEpitopeTSV(er)
	er.Close()
	if err != nil {
		log.Fatalln(err)
	}

	if err := popcov.ValidateEpitopes(epitopes); err != nil {
		log.Fatalln(err)
	}
	// Reject epitopes whose allele the table cannot price before anything
	// is written.
	checked := make(map[string]struct{})
	for _, e := range epitopes {
		if _, ok := checked[e.Allele.Locus]; ok {
			continue
		}
		checked[e.Allele.Locus] = struct{}{}
		if _, err := popcov.ComputeLocusCoverage(e.Allele.Locus, epitopes, table); err != nil {
			log.Fatalln(err)
		}
	}

	meta := popcov.ReferenceMetadata{
		Name:   *name,
		Source: *epitopePath + " + " + *freqPath,
	}

	log.WithFields(log.Fields{
		"out":      *out,
		"driver":   popcov.WhichSQLiteDriver(),
		"alleles":  len(records),
		"epitopes": len(epitopes),
	}).Info("Writing reference database")

	ref, err := popcov.CreateReferenceDB(*out, meta, table, epitopes)
	if err != nil {
		log.Fatalln(err)
	}
	if err := ref.Close(); err != nil {
		log.Fatalln(err)
	}

	log.Println("Done")
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
