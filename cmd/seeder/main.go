package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/passage"
)

var sentences = []string{
	"The lighthouse keeper climbed the spiral stairs every evening before dusk.",
	"A pod of orcas followed the ferry halfway across the strait.",
	"The observatory dome opened with a low mechanical groan.",
	"Fresh snow muffled every footstep on the mountain trail.",
	"The baker slid another tray of sourdough into the brick oven.",
	"An old tram rattled past the flower market at noon.",
	"The archivist catalogued letters written more than a century ago.",
	"Wind turbines turned slowly above the yellow rapeseed fields.",
	"The diver surfaced beside the reef with a camera full of photographs.",
	"A violinist rehearsed the same phrase until the hall went dark.",
	"The glacier calved an iceberg the size of a city block.",
	"Market vendors called out prices over the morning crowd.",
	"The cartographer traced the river delta onto a fresh sheet.",
	"Night trains carried mail between the coastal towns.",
	"The beekeeper smoked the hive before lifting the first frame.",
	"A falcon circled the grain silo twice and settled on the rim.",
	"The printing press hammered out the weekend edition overnight.",
	"Low tide exposed a causeway to the island chapel.",
	"The chess club met above the hardware store on Thursdays.",
	"A surveyor planted the last marker at the edge of the orchard.",
	"The ferry horn echoed twice against the harbor cliffs.",
	"Rain filled the cistern for the first time since spring.",
	"The astronomer logged a faint smudge that was not on the charts.",
	"Dock workers stacked crates of oranges under the sodium lights.",
	"The weaver threaded the loom with undyed wool.",
	"A landslide closed the pass road for the third winter running.",
	"The librarian repaired a torn atlas with linen tape.",
	"Fishing boats returned early ahead of the squall line.",
	"The stonemason squared the lintel with four patient cuts.",
	"A hot air balloon drifted over the vineyard terraces at dawn.",
}

var (
	seedFileName = flag.String("src", "", "file of seed sentences, one per line")
	storePath    = flag.String("db", "./passage_db", "path to the snapshot store directory")
	query        = flag.String("query", "boats coming back to the harbor", "query to run after seeding")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// collectDocument joins seed lines into one document. Segmentation splits
// it back into sentence units during the build.
func collectDocument(source iter.Seq[string]) string {
	var b strings.Builder
	for line := range source {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return b.String()
}

func main() {
	kb, err := passage.Open(*storePath)
	if err != nil {
		panic(err)
	}
	defer kb.Close()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(sentences)
	}

	if err := kb.Build(ctx, collectDocument(source)); err != nil {
		panic(err)
	}
	slog.Info("seeded snapshot", "units", kb.Count())

	// Run one query so the seeded store is known to answer
	result, err := kb.Query(ctx, *query, 3)
	if err != nil {
		panic(err)
	}
	for i, hit := range result.Hits {
		fmt.Printf("%d: '%s' (%d)[%0.3f]\n", i, hit.Text, hit.Unit, hit.Score)
	}
}
