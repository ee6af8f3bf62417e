// Package warehouse is the Warehouse Adapter (spec §4.7): an opaque
// collaborator exposing CreateDataset/CreateTable/InsertRows/ScalarQuery/
// TableExists over a concrete BigQuery-backed client, plus the
// deterministic insert-id scheme (§4.8) used for idempotent retries.
package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/retry"
	"github.com/lgingerich/evm-indexer/internal/telemetry"
)

// maxBatchBytes is the effective per-InsertRows-call ceiling: BigQuery's
// 10 MB hard limit minus a 0.5 MB safety margin (spec §4.7).
const maxBatchBytes = 10_000_000 - 500_000

// rowOverheadBytes is the estimated per-row JSON envelope overhead used
// when sizing batches.
const rowOverheadBytes = 200

// Row is one record destined for InsertRows: a deterministic insert id
// plus its JSON-serializable payload.
type Row struct {
	InsertID string
	JSON     interface{}
}

// valueSaverRow adapts a Row to bigquery.ValueSaver by round-tripping it
// through JSON into a map, since the row DTOs are plain structs rather
// than bigquery.ValueSaver implementations themselves.
type valueSaverRow struct {
	insertID string
	payload  map[string]bigquery.Value
}

func (v valueSaverRow) Save() (map[string]bigquery.Value, string, error) {
	return v.payload, v.insertID, nil
}

func toValueSaver(r Row) (valueSaverRow, error) {
	raw, err := json.Marshal(r.JSON)
	if err != nil {
		return valueSaverRow{}, fmt.Errorf("warehouse: marshal row: %w", err)
	}
	var m map[string]bigquery.Value
	if err := json.Unmarshal(raw, &m); err != nil {
		return valueSaverRow{}, fmt.Errorf("warehouse: row is not a JSON object: %w", err)
	}
	return valueSaverRow{insertID: r.InsertID, payload: m}, nil
}

// Client is the Warehouse Adapter.
type Client struct {
	bq      *bigquery.Client
	project string
	metrics *telemetry.Recorder
}

// New dials BigQuery with the caller's already-authenticated context
// (spec §5 "process-wide handle set once under a write-once cell" —
// construction happens exactly once in cmd/indexer and the handle is
// passed down explicitly thereafter).
func New(ctx context.Context, projectID string, metrics *telemetry.Recorder) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("warehouse: dial bigquery: %w", err)
	}
	return &Client{bq: bq, project: projectID, metrics: metrics}, nil
}

func (c *Client) Close() error {
	return c.bq.Close()
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 409 || strings.Contains(apiErr.Message, "Already Exists")
	}
	return false
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404
	}
	return false
}

// CreateDataset is idempotent: "already exists" is treated as success.
func (c *Client) CreateDataset(ctx context.Context, name, location string) error {
	ds := c.bq.Dataset(name)
	err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: location})
	if err == nil || isAlreadyExists(err) {
		return nil
	}
	return fmt.Errorf("warehouse: create dataset %s: %w", name, err)
}

// CreateTable is idempotent and day-partitions on block_date per spec §4.7.
func (c *Client) CreateTable(ctx context.Context, datasetName, tableName string, schema bigquery.Schema) error {
	table := c.bq.Dataset(datasetName).Table(tableName)
	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "block_date",
		},
	}
	err := table.Create(ctx, meta)
	if err == nil || isAlreadyExists(err) {
		return nil
	}
	return fmt.Errorf("warehouse: create table %s.%s: %w", datasetName, tableName, err)
}

// TableExists reports whether the table's metadata is readable.
func (c *Client) TableExists(ctx context.Context, datasetName, tableName string) (bool, error) {
	_, err := c.bq.Dataset(datasetName).Table(tableName).Metadata(ctx)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("warehouse: check table %s.%s: %w", datasetName, tableName, err)
}

// putFunc persists one batch of rows; InsertRows wraps the real BigQuery
// inserter in retry.Do, and tests substitute a fake to exercise the
// batching loop without a live client.
type putFunc func(ctx context.Context, batch []valueSaverRow) error

// InsertRows flushes rows in size-bounded batches (spec §4.7):
// skipInvalidRows and ignoreUnknownValues are both set, a single oversized
// row is flushed alone rather than blocking the whole batch, and every
// underlying Put goes through the shared retry executor (spec §7: warehouse
// transport errors are retried by the same policy as RPC calls).
func (c *Client) InsertRows(ctx context.Context, datasetName, tableName string, rows []Row) error {
	inserter := c.bq.Dataset(datasetName).Table(tableName).Inserter()
	inserter.SkipInvalidRows = true
	inserter.IgnoreUnknownValues = true

	label := fmt.Sprintf("warehouse.InsertRows(%s.%s)", datasetName, tableName)
	put := func(ctx context.Context, batch []valueSaverRow) error {
		_, err := retry.Do(ctx, retry.Default, label, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, inserter.Put(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("warehouse: insert into %s.%s: %w", datasetName, tableName, err)
		}
		return nil
	}
	observe := func(n int, d time.Duration) { c.metrics.ObserveInsert(tableName, n, d) }

	return batchInsert(ctx, rows, maxBatchBytes, rowOverheadBytes, put, observe)
}

// batchInsert accumulates rows into byte-bounded batches and flushes each
// through put, flushing a single row alone when it exceeds maxBytes on its
// own. Extracted from InsertRows so the ceiling/oversized-row/flush
// behavior is testable without a BigQuery client.
func batchInsert(ctx context.Context, rows []Row, maxBytes, rowOverhead int, put putFunc, observe func(n int, d time.Duration)) error {
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()
	var batch []valueSaverRow
	var batchBytes int
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := put(ctx, batch); err != nil {
			return err
		}
		observe(len(batch), time.Since(start))
		batch = batch[:0]
		batchBytes = 0
		return nil
	}

	for _, r := range rows {
		vr, err := toValueSaver(r)
		if err != nil {
			return err
		}
		raw, _ := json.Marshal(r.JSON)
		size := len(raw) + rowOverhead

		if batchBytes+size > maxBytes && len(batch) > 0 {
			if err := flush(); err != nil {
				return err
			}
		}
		if size > maxBytes {
			if err := put(ctx, []valueSaverRow{vr}); err != nil {
				return err
			}
			observe(1, time.Since(start))
			continue
		}

		batch = append(batch, vr)
		batchBytes += size
	}

	return flush()
}

// ScalarQuery runs a single-row, single-column query and returns its
// uint64 value, or nil if the result is NULL or empty. The query itself is
// retried by the shared executor (spec §7), same as InsertRows.
func (c *Client) ScalarQuery(ctx context.Context, query string) (*uint64, error) {
	q := c.bq.Query(query)
	it, err := retry.Do(ctx, retry.Default, "warehouse.ScalarQuery", func(ctx context.Context) (*bigquery.RowIterator, error) {
		return q.Read(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("warehouse: scalar query: %w", err)
	}

	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		return nil, nil // iterator.Done or empty result set
	}
	if len(row) == 0 || row[0] == nil {
		return nil, nil
	}

	switch v := row[0].(type) {
	case int64:
		u := uint64(v)
		return &u, nil
	default:
		return nil, fmt.Errorf("warehouse: scalar query returned non-integer value %v", v)
	}
}

// ResumePoint implements spec §4.7: across all active datasets, take the
// minimum MAX(block_number) of existing tables; absent tables contribute
// nothing. Next block = min+1, or 0 if no active table exists yet.
func (c *Client) ResumePoint(ctx context.Context, datasetName string, active []models.Dataset) (uint64, error) {
	var min *uint64

	for _, d := range active {
		table := string(d)
		exists, err := c.TableExists(ctx, datasetName, table)
		if err != nil {
			return 0, err
		}
		if !exists {
			continue
		}

		query := fmt.Sprintf("SELECT MAX(block_number) FROM `%s.%s.%s`", c.project, datasetName, table)
		max, err := c.ScalarQuery(ctx, query)
		if err != nil {
			return 0, err
		}
		if max == nil {
			continue
		}
		if min == nil || *max < *min {
			min = max
		}
	}

	if min == nil {
		return 0, nil
	}
	return *min + 1, nil
}
