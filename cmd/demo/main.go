package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Manuqueiroz1/relatorio-email/internal/demo"
)

func main() {
	dir := flag.String("dir", "demo_data", "output directory")
	weeks := flag.Int("weeks", 4, "number of weekly exports to generate")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	end := flag.String("end", "", "end date of the latest week (YYYY-MM-DD, default last Sunday)")
	flag.Parse()

	if *weeks <= 0 {
		fmt.Fprintln(os.Stderr, "weeks must be > 0")
		os.Exit(2)
	}

	endDate := lastSunday(time.Now())
	if *end != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *end, time.UTC)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid -end (expected YYYY-MM-DD):", err)
			os.Exit(2)
		}
		endDate = parsed
	}

	files, err := demo.NewGenerator(*seed).Generate(*dir, *weeks, endDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generation failed:", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d files in %s:\n", len(files), *dir)
	for _, f := range files {
		fmt.Println("  ", f)
	}
}

func lastSunday(now time.Time) time.Time {
	d := now.UTC().Truncate(24 * time.Hour)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
