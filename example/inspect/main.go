package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/popcov"
	log "github.com/sirupsen/logrus"
)

func main() {
	path := flag.String("db", "reference.db", "Reference database to inspect (local path or gs://)")
	confidence := flag.Float64("confidence", 0.95, "Confidence level of the per-epitope Clopper-Pearson intervals")
	flag.Parse()

	if strings.HasPrefix(*path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*path = filepath.Join(usr.HomeDir, (*path)[2:])
	}

	local, err := popcov.LocalizeFile(context.Background(), *path, os.TempDir())
	if err != nil {
		log.Fatalln(err)
	}
	if local != *path {
		defer os.Remove(local)
	}

	ref, err := popcov.OpenReferenceDB(local)
	if err != nil {
		log.Fatalln(err)
	}
	defer ref.Close()

	log.Printf("Metadata: %+v\n", ref.Metadata)

	table, err := ref.FrequencyTable()
	if err != nil {
		log.Fatalln(err)
	}
	for _, locus := range table.Loci() {
		log.WithField("locus", locus).Infof("UNKNOWN frequency %.4f", table.UnknownFrequency(locus))
	}

	epitopes, err := ref.Epitopes()
	if err != nil {
		log.Fatalln(err)
	}

	for i, e := range epitopes {
		ci, err := popcov.ClopperPearson(e.NResponders, e.NTested, *confidence)
		if err != nil {
			log.Warnf("%d) %s: %v", i, e.SequenceID, err)
			continue
		}
		fmt.Printf("%d\t%s\t%s\t%.4f\t%d/%d\t[%.4f, %.4f]\n", i, e.SequenceID, e.Allele, e.Immunoprevalence, e.NResponders, e.NTested, ci.Lower, ci.Upper)
	}

	log.Println("Iterated over", len(epitopes), "epitopes")
}
