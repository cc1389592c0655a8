package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/output"
	"github.com/vegasq/parqsample/internal/reader"
	"github.com/vegasq/parqsample/internal/sample"
	"github.com/vegasq/parqsample/internal/schema"
)

var (
	modeFlag       = flag.String("mode", "indexed", "Sampling strategy: indexed, filtered, stratified, daily, filter-only")
	nFlag          = flag.Int64("n", 1000, "Number of rows to sample")
	seedFlag       = flag.Int64("seed", 42, "RNG seed")
	perDayFlag     = flag.Int64("per-day", 10, "Rows per day per shard (daily mode)")
	filterFlag     = flag.String("filter", "", "JSON filter spec (e.g. '{\"QuadClass\": [1,2]}')")
	columnsFlag    = flag.String("columns", "", "Comma-separated output columns (default: all)")
	stratifyFlag   = flag.String("stratify-col", "", "Grouping column (stratified mode)")
	nPerGroupFlag  = flag.Int64("n-per-group", 100, "Rows per group (stratified mode)")
	dayColFlag     = flag.String("day-col", "Day", "Day column (daily mode)")
	schemaFlag     = flag.String("schema", "", "YAML file declaring the dataset's columns (default: GDELT event schema)")
	formatFlag     = flag.String("f", "parquet", "Output format: parquet, json, csv, table")
	outFlag        = flag.String("o", "sample.parquet", "Output file ('-' for stdout)")
	showSchemaFlag = flag.Bool("show-schema", false, "Print the first shard's column schema and exit")
	verboseFlag    = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <shard-dir>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Draws statistically sound samples from a folder of parquet shards.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -mode indexed -n 5000 data/\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode filtered -n 1000 -filter '{\"Actor1Code\": \"USA\"}' data/\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode stratified -stratify-col QuadClass -n-per-group 100 data/\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode daily -per-day 10 -f csv -o - data/\n", os.Args[0])
	}

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: missing shard directory argument\n\n")
		flag.Usage()
		os.Exit(1)
	}
	dir := flag.Arg(0)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	if *verboseFlag {
		log.SetLevel(logrus.DebugLevel)
	}

	if *showSchemaFlag {
		if err := printSchema(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cols := schema.Default()
	if *schemaFlag != "" {
		var err error
		cols, err = schema.Load(*schemaFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading schema: %v\n", err)
			os.Exit(1)
		}
	}

	req := sample.Request{
		Mode:           sample.Mode(*modeFlag),
		N:              *nFlag,
		Seed:           *seedFlag,
		PerDay:         *perDayFlag,
		StratifyColumn: *stratifyFlag,
		NPerGroup:      *nPerGroupFlag,
		DayColumn:      *dayColFlag,
	}
	if *columnsFlag != "" {
		for _, c := range strings.Split(*columnsFlag, ",") {
			if c = strings.TrimSpace(c); c != "" {
				req.Columns = append(req.Columns, c)
			}
		}
	}
	if *filterFlag != "" {
		if err := json.Unmarshal([]byte(*filterFlag), &req.FilterSpec); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid JSON passed to -filter: %v\n", err)
			os.Exit(1)
		}
	}

	rows, err := sample.Run(dir, req, cols, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	projection := cols.Names()
	if len(req.Columns) > 0 {
		projection, _ = cols.Select(req.Columns)
	}

	var dest *os.File
	if *outFlag == "-" {
		dest = os.Stdout
	} else {
		dest, err = os.Create(*outFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot create %s: %v\n", *outFlag, err)
			os.Exit(1)
		}
		defer func() { _ = dest.Close() }()
	}

	var formatter output.Formatter
	switch *formatFlag {
	case "parquet":
		formatter = output.NewParquetFormatter(dest, projection)
	case "json", "jsonl":
		formatter = output.NewJSONFormatter(dest)
	case "csv":
		formatter = output.NewCSVFormatter(dest, projection)
	case "table":
		formatter = output.NewTableFormatter(dest, projection)
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format '%s'\n", *formatFlag)
		fmt.Fprintf(os.Stderr, "Supported formats: parquet, json, csv, table\n")
		os.Exit(1)
	}

	if err := formatter.Format(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"rows": len(rows),
		"out":  *outFlag,
	}).Info("sample written")
}

func printSchema(dir string) error {
	shards, err := reader.ListShards(dir)
	if err != nil {
		return err
	}
	if len(shards) == 0 {
		return fmt.Errorf("no parquet shards found in %s", dir)
	}
	infos, err := reader.ExtractSchemaInfo(shards[0])
	if err != nil {
		return err
	}
	for _, info := range infos {
		nullable := "required"
		if info.Optional {
			nullable = "optional"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", info.Name, info.Type, info.PhysicalType, nullable)
	}
	return nil
}
