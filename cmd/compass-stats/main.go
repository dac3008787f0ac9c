// compass-stats summarizes archived heading samples: circular mean,
// angular spread and a 16-point cardinal histogram over a time window.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	_ "github.com/lib/pq"
	"gonum.org/v1/gonum/stat"
)

// HeadingReading represents one archived heading sample
type HeadingReading struct {
	Time     time.Time
	Heading  float64
	Cardinal string
	Mode     string
}

var cardinals = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

func main() {
	var (
		dbHost    = flag.String("db-host", "localhost", "Database host")
		dbPort    = flag.Int("db-port", 5432, "Database port")
		dbUser    = flag.String("db-user", "postgres", "Database user")
		dbPass    = flag.String("db-pass", "", "Database password")
		dbName    = flag.String("db-name", "compass", "Database name")
		hours     = flag.Int("hours", 24, "Number of hours of data to analyze")
		csvOutput = flag.String("csv", "", "Optional CSV output file path")
	)
	flag.Parse()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Error pinging database: %v\n", err)
		os.Exit(1)
	}

	readings, err := fetchReadings(db, *hours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching headings: %v\n", err)
		os.Exit(1)
	}
	if len(readings) == 0 {
		fmt.Fprintf(os.Stderr, "No heading samples found in the last %d hours.\n", *hours)
		os.Exit(1)
	}

	fmt.Printf("Compass Heading Statistics\n")
	fmt.Printf("==========================\n\n")
	fmt.Printf("Analysis Period: %d hours\n", *hours)
	fmt.Printf("Samples: %d\n\n", len(readings))

	displayStats(readings)
	displayHistogram(readings)

	if *csvOutput != "" {
		if err := writeCSV(*csvOutput, readings); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %d samples to %s\n", len(readings), *csvOutput)
	}
}

func fetchReadings(db *sql.DB, hours int) ([]HeadingReading, error) {
	rows, err := db.Query(`
		SELECT time, heading, cardinal, mode
		FROM compass_headings
		WHERE time > NOW() - ($1 || ' hours')::interval
		ORDER BY time ASC`, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []HeadingReading
	for rows.Next() {
		var r HeadingReading
		if err := rows.Scan(&r.Time, &r.Heading, &r.Cardinal, &r.Mode); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// circularMean returns the circular mean of the headings in degrees [0, 360).
func circularMean(readings []HeadingReading) float64 {
	radians := make([]float64, len(readings))
	for i, r := range readings {
		radians[i] = r.Heading * math.Pi / 180.0
	}
	mean := stat.CircularMean(radians, nil) * 180.0 / math.Pi
	return math.Mod(math.Mod(mean, 360)+360, 360)
}

// shortestDiff returns the signed shortest-arc difference from a to b in (-180, 180].
func shortestDiff(a, b float64) float64 {
	d := math.Mod(b-a+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}

func displayStats(readings []HeadingReading) {
	mean := circularMean(readings)

	deviations := make([]float64, len(readings))
	for i, r := range readings {
		deviations[i] = shortestDiff(mean, r.Heading)
	}

	spread := 0.0
	if len(readings) > 1 {
		spread = stat.StdDev(deviations, nil)
	}

	idx := int(math.Round(mean/22.5)) % 16

	fmt.Printf("Circular Mean: %.1f° (%s)\n", mean, cardinals[idx])
	fmt.Printf("Angular Spread: %.1f°\n", spread)
	fmt.Printf("First Sample: %s\n", readings[0].Time.Format(time.RFC3339))
	fmt.Printf("Last Sample:  %s\n", readings[len(readings)-1].Time.Format(time.RFC3339))
}

func displayHistogram(readings []HeadingReading) {
	counts := make(map[string]int)
	for _, r := range readings {
		counts[r.Cardinal]++
	}

	fmt.Printf("\nCardinal Distribution:\n")
	for _, c := range cardinals {
		n := counts[c]
		if n == 0 {
			continue
		}
		bar := ""
		for i := 0; i < n*40/len(readings); i++ {
			bar += "#"
		}
		fmt.Printf("  %-3s %5d  %s\n", c, n, bar)
	}
}

func writeCSV(path string, readings []HeadingReading) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "heading", "cardinal", "mode"}); err != nil {
		return err
	}
	for _, r := range readings {
		record := []string{
			r.Time.Format(time.RFC3339),
			fmt.Sprintf("%g", r.Heading),
			r.Cardinal,
			r.Mode,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
