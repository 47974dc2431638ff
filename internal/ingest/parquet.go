package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/ScottSyms/densitytiles/internal/models"
)

const parquetBatchSize = 1024

var parquetTimeColumns = []string{"BaseDateTime", "basedatetime", "timestamp"}

// ReadParquetFile loads points from the longitude, latitude and optional
// BaseDateTime columns of a Parquet file. Numeric columns of any width are
// accepted. Timestamps may be TIMESTAMP or DATE logical types, integer unix
// seconds, or strings.
func ReadParquetFile(path string) ([]models.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pf.Schema()
	lonCol, okLon := schema.Lookup("longitude")
	latCol, okLat := schema.Lookup("latitude")
	if !okLon || !okLat {
		return nil, fmt.Errorf("schema lacks longitude and latitude columns")
	}

	timeIdx := -1
	var decode timeDecoder
	for _, name := range parquetTimeColumns {
		if col, ok := schema.Lookup(name); ok {
			timeIdx = col.ColumnIndex
			decode = newTimeDecoder(col.Node)
			break
		}
	}

	points := make([]models.Point, 0, pf.NumRows())
	buf := make([]parquet.Row, parquetBatchSize)

	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				var (
					p              models.Point
					hasLon, hasLat bool
				)
				for _, v := range row {
					switch v.Column() {
					case lonCol.ColumnIndex:
						p.Longitude, hasLon = valueFloat(v)
					case latCol.ColumnIndex:
						p.Latitude, hasLat = valueFloat(v)
					case timeIdx:
						if ts, ok := decode(v); ok {
							p.Timestamp = ts
						}
					}
				}
				if hasLon && hasLat {
					points = append(points, p)
				}
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
		}
		rows.Close()
	}

	return points, nil
}

func valueFloat(v parquet.Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	switch v.Kind() {
	case parquet.Double:
		return v.Double(), true
	case parquet.Float:
		return float64(v.Float()), true
	case parquet.Int32:
		return float64(v.Int32()), true
	case parquet.Int64:
		return float64(v.Int64()), true
	}
	return 0, false
}

type timeDecoder func(parquet.Value) (time.Time, bool)

// newTimeDecoder picks the conversion for a timestamp column from its
// logical type
func newTimeDecoder(node parquet.Node) timeDecoder {
	lt := node.Type().LogicalType()

	switch {
	case lt != nil && lt.Timestamp != nil:
		fromInt := time.UnixMilli
		switch {
		case lt.Timestamp.Unit.Micros != nil:
			fromInt = time.UnixMicro
		case lt.Timestamp.Unit.Nanos != nil:
			fromInt = func(n int64) time.Time { return time.Unix(0, n) }
		}
		return func(v parquet.Value) (time.Time, bool) {
			if v.IsNull() || v.Kind() != parquet.Int64 {
				return time.Time{}, false
			}
			return fromInt(v.Int64()).UTC(), true
		}

	case lt != nil && lt.Date != nil:
		return func(v parquet.Value) (time.Time, bool) {
			if v.IsNull() || v.Kind() != parquet.Int32 {
				return time.Time{}, false
			}
			return time.Unix(int64(v.Int32())*86400, 0).UTC(), true
		}
	}

	return func(v parquet.Value) (time.Time, bool) {
		if v.IsNull() {
			return time.Time{}, false
		}
		switch v.Kind() {
		case parquet.Int32:
			return time.Unix(int64(v.Int32()), 0).UTC(), true
		case parquet.Int64:
			return time.Unix(v.Int64(), 0).UTC(), true
		case parquet.ByteArray:
			return ParseTimestamp(string(v.ByteArray()))
		}
		return time.Time{}, false
	}
}
