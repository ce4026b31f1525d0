package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

var (
	hosts    = []string{"api-1", "api-2", "db-1", "cache-1", "worker-1", "worker-2"}
	statuses = []string{"ok", "degraded", "down", "Timeout", "unknown"}
	labels   = []string{"prod", "eu", "us", "canary", "ipv6"}
)

func healthChecksSchema(indexed []string) schema.Schema {
	s := schema.New("health_checks",
		schema.SchemaColumn{Name: "created_at", Type: schema.TimestampFieldType},
		schema.SchemaColumn{Name: "value", Type: schema.IntFieldType},
		schema.SchemaColumn{Name: "latency", Type: schema.DoubleFieldType, Nullable: true},
		schema.SchemaColumn{Name: "host", Type: schema.StringFieldType},
		schema.SchemaColumn{Name: "status", Type: schema.StringFieldType, Nullable: true},
		schema.SchemaColumn{Name: "cost", Type: schema.DecimalFieldType, Nullable: true},
		schema.SchemaColumn{Name: "probe", Type: schema.UUIDFieldType},
		schema.SchemaColumn{Name: "labels", Type: schema.StringFieldType, Collection: schema.SetCollection},
		schema.SchemaColumn{Name: "extra", Type: schema.MixedFieldType},
	)
	for _, name := range indexed {
		for i := range s.Columns {
			if s.Columns[i].Name == name {
				s.Columns[i].Indexed = true
			}
		}
	}
	return s
}

// generate fills a health_checks table with cfg.Rows pseudo random rows.
// The same seed always yields the same table.
func generate(cfg Config) (*storage.Table, error) {
	opts, err := cfg.tableOptions()
	if err != nil {
		return nil, err
	}
	s := healthChecksSchema(cfg.Indexed)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	tbl, err := storage.NewTable(s, opts...)
	if err != nil {
		return nil, err
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	rnd := rand.New(src)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pick := func(from []string) schema.Value {
		return schema.String(from[rnd.IntN(len(from))])
	}
	orNull := func(v schema.Value) schema.Value {
		if rnd.IntN(10) == 0 {
			return schema.Null()
		}
		return v
	}

	before := time.Now()
	for i := range cfg.Rows {
		probe, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, err
		}

		var set []schema.Value
		for _, l := range labels {
			if rnd.IntN(3) == 0 {
				set = append(set, schema.String(l))
			}
		}

		var extra schema.Value
		switch rnd.IntN(4) {
		case 0:
			extra = schema.Int(rnd.Int64N(100))
		case 1:
			extra = pick(statuses)
		case 2:
			extra = schema.Double(rnd.Float64())
		}

		_, err = tbl.Insert(
			schema.Timestamp(start.Add(time.Duration(i)*time.Second)),
			schema.Int(rnd.Int64N(50000)),
			orNull(schema.Double(rnd.ExpFloat64()*20)),
			pick(hosts),
			orNull(pick(statuses)),
			orNull(schema.Decimal(decimal.New(rnd.Int64N(100000), -2))),
			schema.UUID(probe),
			set,
			extra,
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := tbl.Seal(); err != nil {
		return nil, err
	}

	slog.Info("generated table", "name", s.Name, "rows", tbl.Size(), "pages", len(tbl.Pages()), "took", time.Since(before))
	return tbl, nil
}
