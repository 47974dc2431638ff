package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ScottSyms/densitytiles/internal/models"
)

var (
	lonColumns  = []string{"longitude", "lon", "lng"}
	latColumns  = []string{"latitude", "lat"}
	timeColumns = []string{"basedatetime", "timestamp", "time", "datetime"}
)

// ReadCSVFile loads points from a CSV file with a header row
func ReadCSVFile(path string) ([]models.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV loads points from CSV with a header row naming the longitude,
// latitude and optional timestamp columns. Rows whose coordinates do not
// parse are dropped; an unparseable timestamp leaves the point untimed.
func ReadCSV(r io.Reader) ([]models.Point, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	lonIdx := columnIndex(header, lonColumns)
	latIdx := columnIndex(header, latColumns)
	timeIdx := columnIndex(header, timeColumns)
	if lonIdx < 0 || latIdx < 0 {
		return nil, fmt.Errorf("header %q lacks longitude and latitude columns", strings.Join(header, ","))
	}

	var points []models.Point
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if lonIdx >= len(record) || latIdx >= len(record) {
			continue
		}
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(record[lonIdx]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		if errLon != nil || errLat != nil {
			continue
		}

		p := models.Point{Longitude: lon, Latitude: lat}
		if timeIdx >= 0 && timeIdx < len(record) {
			if ts, ok := ParseTimestamp(record[timeIdx]); ok {
				p.Timestamp = ts
			}
		}
		points = append(points, p)
	}

	return points, nil
}

// columnIndex finds the first header matching any candidate, ignoring case
func columnIndex(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), want) {
				return i
			}
		}
	}
	return -1
}
