package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gcesync/internal"
	"gcesync/internal/config"
	"gcesync/internal/pipeline"
	"gcesync/internal/storage"
	"gcesync/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	switch cmd {
	case "sweep":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		maxPages := fs.Int("max-pages", cfg.SweepMaxPages, "page ceiling, 0 = no limit")
		_ = fs.Parse(os.Args[2:])
		cfg.SweepMaxPages = *maxPages
		svc := pipeline.NewSweepService(db, cfg)
		result, err := svc.Run(ctx)
		must(err)
		fmt.Printf("sweep complete pages=%d updated=%d\n", result.Pages, result.Updated)
	case "refresh":
		svc := pipeline.NewRefreshService(db, cfg)
		result, err := svc.Run(ctx)
		must(err)
		fmt.Printf("refresh complete checked=%d updated=%d\n", result.Checked, result.Updated)
	case "watch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		interval := fs.Int("interval-min", cfg.WatchInterval, "minutes between cycles")
		_ = fs.Parse(os.Args[2:])
		cfg.WatchInterval = *interval
		must(cfg.RequireCredentials())
		svc := watcher.NewService(db, cfg)
		must(svc.Run(ctx))
	case "items:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		code := fs.String("code", "", "external code (dddd.dddd.dddddd)")
		name := fs.String("name", "", "display name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*code) == "" {
			must(fmt.Errorf("--code is required"))
		}
		var namePtr *string
		if strings.TrimSpace(*name) != "" {
			namePtr = internal.StringPtr(*name)
		}
		must(db.InsertItem(strings.TrimSpace(*code), namePtr))
		fmt.Printf("item stored code=%s\n", strings.TrimSpace(*code))
	case "items:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("xlsx", "", "spreadsheet with external codes in column A")
		sheet := fs.String("sheet", "", "sheet name, default first")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*path) == "" {
			must(fmt.Errorf("--xlsx is required"))
		}
		codes, skipped, err := pipeline.ReadCodesFromXLSX(*path, *sheet)
		must(err)
		for _, code := range codes {
			must(db.InsertItem(code, nil))
		}
		fmt.Printf("imported %d codes, skipped %d cells\n", len(codes), skipped)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		items, err := db.ListCatalogItems()
		must(err)
		must(pipeline.ExportItemsToXLSX(items, *out))
		fmt.Printf("exported %d items to %s\n", len(items), *out)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: gcesync <command>")
	fmt.Println("commands:")
	fmt.Println("  sweep [--max-pages=1]")
	fmt.Println("  refresh")
	fmt.Println("  watch [--interval-min=60]")
	fmt.Println("  items:add --code=dddd.dddd.dddddd [--name=...]")
	fmt.Println("  items:import --xlsx=codes.xlsx [--sheet=...]")
	fmt.Println("  export:xlsx --out=./out/items.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
