package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dot5enko/colquery/parser"
	"github.com/dot5enko/colquery/query"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

func newGenerateCmd(cfgPath *string) *cobra.Command {
	var show int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the health_checks table and print a sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *cfgPath)
			if err != nil {
				return err
			}
			tbl, err := generate(cfg)
			if err != nil {
				return err
			}

			var keys []storage.RowKey
			for _, p := range tbl.Pages() {
				for _, k := range p.Keys() {
					if len(keys) == show {
						break
					}
					keys = append(keys, k)
				}
			}
			return printRows(cmd.OutOrStdout(), tbl, keys)
		},
	}
	cmd.Flags().IntVar(&show, "show", 10, "rows to print")
	return cmd
}

func newDescribeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <predicate>",
		Short: "Print the normalized form of a predicate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *cfgPath)
			if err != nil {
				return err
			}
			cfg.Rows = 0
			tbl, err := generate(cfg)
			if err != nil {
				return err
			}

			q, err := parser.Parse(tbl, args[0])
			if err != nil {
				return err
			}
			text, err := q.Describe()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

const queryExample = `  colquery query 'host == "api-1" and latency > 40'
  colquery query --agg avg --column value 'status BEGINSWITH[c] "t"'
  colquery query --parallel --workers 8 'labels.@count >= 2'`

type queryFlags struct {
	limit    int
	count    bool
	parallel bool
	dump     bool
	agg      string
	column   string
	cycles   int
}

func newQueryCmd(cfgPath *string) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:     "query <predicate>",
		Short:   "Run a predicate over the generated health_checks table",
		Example: queryExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *cfgPath)
			if err != nil {
				return err
			}
			tbl, err := generate(cfg)
			if err != nil {
				return err
			}
			return runQuery(cmd, tbl, args[0], cfg, f)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.limit, "limit", 20, "rows to print, 0 for all")
	fl.BoolVar(&f.count, "count", false, "only count the matches")
	fl.BoolVar(&f.parallel, "parallel", false, "count the matches with one goroutine per page partition")
	fl.BoolVar(&f.dump, "dump", false, "dump the node tree")
	fl.StringVar(&f.agg, "agg", "", "aggregate the matches: sum, avg, min or max")
	fl.StringVar(&f.column, "column", "value", "column aggregated by --agg")
	fl.IntVar(&f.cycles, "cycles", 1, "repeat the query and report the time per cycle")
	return cmd
}

func runQuery(cmd *cobra.Command, tbl *storage.Table, text string, cfg Config, f queryFlags) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	q, err := parser.Parse(tbl, text, cfg.queryOptions()...)
	if err != nil {
		return err
	}
	described, err := q.Describe()
	if err != nil && !errors.Is(err, query.ErrSerialization) {
		return err
	}
	color.New(color.FgCyan).Fprintf(out, "query: %s\n", described)

	if f.dump {
		cs := spew.ConfigState{Indent: "  ", MaxDepth: 4, DisablePointerAddresses: true, SortKeys: true}
		cs.Fdump(out, q.Root())
	}

	var result func() error
	switch {
	case f.agg != "":
		col, err := tbl.Column(f.column)
		if err != nil {
			return err
		}
		result = func() error {
			return aggregate(cmd, q, f.agg, col)
		}
	case f.parallel:
		result = func() error {
			n, err := q.ParallelCount(ctx)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "%d matches\n", n)
			return nil
		}
	case f.count:
		result = func() error {
			n, err := q.Count(ctx)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "%d matches\n", n)
			return nil
		}
	default:
		result = func() error {
			keys, err := q.FindAll(ctx, f.limit)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "%d rows\n", len(keys))
			return printRows(out, tbl, keys)
		}
	}

	return timeCycles(max(f.cycles, 1), "query", result)
}

// timeCycles runs cb n times and logs the mean time of one run.
func timeCycles(n int, label string, cb func() error) error {
	before := time.Now()
	for range n {
		if err := cb(); err != nil {
			return err
		}
	}
	took := time.Since(before)
	slog.Info("finished", "label", label, "cycles", n, "per_cycle", took/time.Duration(n))
	return nil
}

func aggregate(cmd *cobra.Command, q *query.Query, op string, col schema.ColKey) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen)

	op = strings.ToLower(op)
	switch op {
	case "sum":
		v, err := q.Sum(ctx, col)
		if err != nil {
			return err
		}
		green.Fprintf(out, "sum: %s\n", query.PrintValue(v))
	case "avg", "average":
		v, err := q.Average(ctx, col)
		if err != nil {
			return err
		}
		green.Fprintf(out, "avg: %s\n", query.PrintValue(v))
	case "min", "max":
		find := q.Min
		if op == "max" {
			find = q.Max
		}
		v, key, ok, err := find(ctx, col)
		if err != nil {
			return err
		}
		if !ok {
			color.New(color.FgYellow).Fprintf(out, "%s: no values\n", op)
			return nil
		}
		green.Fprintf(out, "%s: %s at row %d\n", op, query.PrintValue(v), key)
	default:
		return fmt.Errorf("unknown aggregate `%s`", op)
	}
	return nil
}

func printRows(w io.Writer, tbl *storage.Table, keys []storage.RowKey) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	cols := tbl.Schema().Columns

	header := []string{"key"}
	for _, c := range cols {
		header = append(header, c.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, key := range keys {
		p, ndx, ok := tbl.Locate(key)
		if !ok {
			return fmt.Errorf("row %d vanished", key)
		}

		cells := []string{fmt.Sprint(key)}
		for i, c := range cols {
			cell, err := renderCell(p, schema.ColKey(i), c.IsCollection(), ndx)
			if err != nil {
				return err
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func renderCell(p *storage.Page, col schema.ColKey, collection bool, ndx int) (string, error) {
	if collection {
		lists, err := p.Lists(col)
		if err != nil {
			return "", err
		}
		var items []string
		for _, v := range lists.Items(ndx) {
			items = append(items, query.PrintValue(v))
		}
		return "{" + strings.Join(items, ", ") + "}", nil
	}

	acc, err := p.Accessor(col)
	if err != nil {
		return "", err
	}
	return query.PrintValue(acc.Value(ndx)), nil
}
