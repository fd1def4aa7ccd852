package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type parquetRow struct {
	Seq        int64  `parquet:"name=seq, type=INT64"`
	ID         string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type       string `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemID     string `parquet:"name=item_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Attributes string `parquet:"name=attributes, type=BYTE_ARRAY, convertedtype=UTF8"`
	CreatedAt  string `parquet:"name=created_at, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ExportParquet writes every event matching q (Limit is ignored) to w as a
// snappy-compressed parquet file and returns the number of rows written.
func (a *Archive) ExportParquet(ctx context.Context, w io.Writer, q Query) (int, error) {
	fw := writerfile.NewWriterFile(w)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	if err != nil {
		return 0, fmt.Errorf("eventlog: parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	written := 0
	page := q
	page.Limit = maxQueryLimit
	for {
		entries, err := a.List(ctx, page)
		if err != nil {
			return written, err
		}
		for _, entry := range entries {
			attrs, err := json.Marshal(entry.Attrs)
			if err != nil {
				return written, err
			}
			row := &parquetRow{
				Seq:        int64(entry.Seq),
				ID:         entry.ID,
				Type:       entry.Type,
				ItemID:     entry.Attrs["itemId"],
				Attributes: string(attrs),
				CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := pw.Write(row); err != nil {
				return written, fmt.Errorf("eventlog: parquet write: %w", err)
			}
			written++
		}
		if len(entries) < page.Limit {
			break
		}
		page.After = entries[len(entries)-1].Seq
	}
	if err := pw.WriteStop(); err != nil {
		return written, fmt.Errorf("eventlog: parquet flush: %w", err)
	}
	return written, nil
}
