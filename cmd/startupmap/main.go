package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"startupmap/internal"
	"startupmap/internal/config"
	"startupmap/internal/connectors"
	"startupmap/internal/listener"
	"startupmap/internal/logging"
	"startupmap/internal/pipeline"
	"startupmap/internal/render"
	"startupmap/internal/server"
	"startupmap/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = logger.Sync() }()

	normalizer, err := pipeline.NewNormalizerFromConfig(cfg, logger)
	must(err)

	cmd := os.Args[1]
	if cmd == "run" {
		runOneShot(cfg, normalizer, os.Args[2:])
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "dataset:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		kind := fs.String("type", "json", "json|xlsx|html|url|sheets")
		input := fs.String("input", "", "file path or URL (defaults to DATASET_PATH / DATASET_URL)")
		_ = fs.Parse(os.Args[2:])
		source, err := connectors.SourceFor(ctx, cfg, *kind, *input, logger)
		must(err)
		res, err := connectors.NewImportService(db, logger).Import(ctx, source)
		must(err)
		fmt.Printf("dataset import done source=%s records=%d\n", res.Source, res.Imported)
	case "dataset:watch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		kind := fs.String("type", cfg.WatchSource, "json|xlsx|html|url|sheets")
		input := fs.String("input", "", "file path or URL")
		_ = fs.Parse(os.Args[2:])
		factory := func(ctx context.Context) (connectors.DatasetSource, error) {
			return connectors.SourceFor(ctx, cfg, *kind, *input, logger)
		}
		must(listener.NewService(db, cfg, factory, normalizer, logger).Run(ctx))
	case "filter":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		criteria := criteriaFlags(fs)
		asJSON := fs.Bool("json", false, "print JSON instead of a table")
		_ = fs.Parse(os.Args[2:])
		res := loadStored(db, normalizer, logger)
		filtered := pipeline.Filter(res.Records, criteria())
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			must(enc.Encode(filtered))
			return
		}
		money := currency(cfg)
		for _, s := range filtered {
			fmt.Printf("%d\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Sector, s.Stage, s.Location, money.Format(s.AnnualRevenue))
		}
		fmt.Println(render.ResultCountLabel(len(filtered)))
	case "facets":
		res := loadStored(db, normalizer, logger)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		must(enc.Encode(map[string]any{
			"sectors":        res.Facets.Sectors,
			"stages":         res.Facets.Stages,
			"companyTypes":   res.Facets.CompanyTypes,
			"revenueRanges":  pipeline.RevenueRanges(),
			"employeeRanges": pipeline.EmployeeRanges,
			"founderGenders": pipeline.FounderGenders,
		}))
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%d\t%s\t%s\t%s\tkept=%d dropped=%d failed=%d\n", r.ID, r.CreatedAt, r.TraceID, r.Source, r.Counts["kept"], r.Counts["dropped"], r.Counts["failed"])
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		criteria := criteriaFlags(fs)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "startups.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		res := loadStored(db, normalizer, logger)
		c := criteria()
		filtered := pipeline.Filter(res.Records, c)
		must(pipeline.ExportStartupsToXLSX(filtered, c, *out))
		fmt.Printf("exported %d startups to %s\n", len(filtered), *out)
	case "render:png":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		criteria := criteriaFlags(fs)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "map.png"), "output png path")
		width := fs.Int("width", 960, "image width")
		height := fs.Int("height", 640, "image height")
		_ = fs.Parse(os.Args[2:])
		res := loadStored(db, normalizer, logger)
		filtered := pipeline.Filter(res.Records, criteria())
		must(os.MkdirAll(filepath.Dir(*out), 0o755))
		f, err := os.Create(*out)
		must(err)
		err = render.RenderPNG(f, filtered, render.MapImageOptions{
			Width:     *width,
			Height:    *height,
			Title:     render.ResultCountLabel(len(filtered)),
			CenterLat: cfg.MapCenterLat,
			CenterLng: cfg.MapCenterLng,
		})
		must(f.Close())
		must(err)
		fmt.Printf("rendered %d startups to %s\n", len(filtered), *out)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		session := pipeline.NewSession(loadStored(db, normalizer, logger).NormalizeResult)
		srv, err := server.New(session, currency(cfg), serverOptions(cfg), logger)
		must(err)
		must(srv.ListenAndServe(ctx, *addr))
	default:
		usage()
		os.Exit(1)
	}
}

// runOneShot reads a dataset file, filters it and writes an xlsx without
// touching the database.
func runOneShot(cfg config.Config, normalizer *pipeline.Normalizer, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	criteria := criteriaFlags(fs)
	input := fs.String("input", cfg.DatasetPath, "dataset file path")
	inType := fs.String("type", "json", "json|xlsx|html")
	output := fs.String("output", "", "output xlsx path")
	_ = fs.Parse(args)
	if *input == "" || *output == "" {
		must(fmt.Errorf("--input and --output are required"))
	}

	raw, err := pipeline.ReadDataset(*inType, *input)
	must(err)
	res := pipeline.NewProcessingService(nil, normalizer, nil).Process("file:"+*input, raw)
	c := criteria()
	filtered := pipeline.Filter(res.Records, c)
	must(pipeline.ExportStartupsToXLSX(filtered, c, *output))
	fmt.Printf("run done total=%d kept=%d matched=%d output=%s\n", res.Total, len(res.Records), len(filtered), *output)
}

func loadStored(db *storage.DB, normalizer *pipeline.Normalizer, logger *zap.Logger) pipeline.ProcessResult {
	n, err := db.CountRawRecords()
	must(err)
	if n == 0 {
		must(fmt.Errorf("no dataset imported; run dataset:import first"))
	}
	res, err := pipeline.NewProcessingService(db, normalizer, logger).LoadStored()
	must(err)
	return res
}

func criteriaFlags(fs *flag.FlagSet) func() internal.FilterCriteria {
	location := fs.String("location", "", "governorate or center substring")
	stage := fs.String("stage", internal.AllOption, "stage")
	companyType := fs.String("companyType", internal.AllOption, "company type")
	revenue := fs.String("revenue", internal.AllOption, "revenue range, e.g. \"100K - 500K EGP\"")
	employees := fs.String("employees", internal.AllOption, "employee range, e.g. 11-50 or 501+")
	gender := fs.String("gender", internal.AllOption, "Male|Female|Mixed|Unknown")
	sectors := fs.String("sector", "", "comma separated sectors")
	return func() internal.FilterCriteria {
		c := internal.DefaultCriteria()
		c.Location = *location
		c.Stage = *stage
		c.CompanyType = *companyType
		c.RevenueRange = *revenue
		c.EmployeeRange = *employees
		c.FounderGender = *gender
		for _, s := range strings.Split(*sectors, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Sectors = append(c.Sectors, s)
			}
		}
		return c
	}
}

func currency(cfg config.Config) *render.CurrencyFormatter {
	money, err := render.NewCurrencyFormatter(cfg.DisplayLocale, cfg.DisplayCurrency)
	must(err)
	return money
}

func serverOptions(cfg config.Config) server.Options {
	return server.Options{
		TileURL:   cfg.TileURL,
		CenterLat: cfg.MapCenterLat,
		CenterLng: cfg.MapCenterLng,
		Zoom:      cfg.MapZoom,
	}
}

func usage() {
	fmt.Println("usage: startupmap <command>")
	fmt.Println("commands:")
	fmt.Println("  dataset:import --type=json|xlsx|html|url|sheets [--input=...]")
	fmt.Println("  dataset:watch [--type=url] [--input=...]")
	fmt.Println("  filter [--location --stage --companyType --revenue --employees --gender --sector=a,b] [--json]")
	fmt.Println("  facets")
	fmt.Println("  runs [--limit=20]")
	fmt.Println("  export:xlsx --out=./out/startups.xlsx [filters]")
	fmt.Println("  render:png --out=./out/map.png [filters]")
	fmt.Println("  serve [--addr=127.0.0.1:8080]")
	fmt.Println("  run --input=... --type=json|xlsx|html --output=...xlsx [filters]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
