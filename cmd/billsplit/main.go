// Command billsplit splits a bill from a YAML file, prints who pays what and
// exports the summary image.
//
// Usage:
//
//	billsplit -bill bill.yaml              # save chia-chi-phi-<ms>.png into the export dir
//	billsplit -bill bill.yaml -out ./tmp   # save into ./tmp
//	billsplit -bill bill.yaml -copy | wl-copy -t image/png
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/export"
	"github.com/mmynk/billsplit/internal/numfmt"
	"github.com/mmynk/billsplit/internal/render"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/logging"
)

type options struct {
	bill   string
	out    string
	copy   bool
	record bool
	config string
}

func main() {
	var opts options
	flag.StringVar(&opts.bill, "bill", "", "path to the bill YAML file (required)")
	flag.StringVar(&opts.out, "out", "", "download directory (default: export.dir from config)")
	flag.BoolVar(&opts.copy, "copy", false, "write the PNG to stdout instead of saving it")
	flag.BoolVar(&opts.record, "record", false, "record the export in the ledger database")
	flag.StringVar(&opts.config, "config", "config.yaml", "path to config file")
	flag.Parse()

	if opts.bill == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		slog.Error("billsplit failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg := config.LoadOrEnvWithPath(opts.config)
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	bill, err := loadBill(opts.bill)
	if err != nil {
		return err
	}
	sess, err := bill.newSession()
	if err != nil {
		return err
	}
	snap := sess.Snapshot()

	// With -copy stdout carries the image, so the table goes to stderr.
	tableOut := stdout
	if opts.copy {
		tableOut = stderr
	}
	if err := printTable(tableOut, snap); err != nil {
		return err
	}

	fonts, err := render.LoadFonts(cfg.Render.FontRegular, cfg.Render.FontBold)
	if err != nil {
		return err
	}

	var exportOpts []export.Option
	if opts.record {
		store, err := sqlite.New(cfg.Storage.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer store.Close()
		exportOpts = append(exportOpts, export.WithLedger(store))
	}
	exporter := export.New(render.New(fonts), exportOpts...)
	in := export.InputFromSnapshot(snap)

	if opts.copy {
		_, err := exporter.Copy(ctx, in, export.WriterTarget{W: stdout})
		return err
	}

	dir := opts.out
	if dir == "" {
		dir = cfg.Export.Dir
	}
	a, err := exporter.Download(ctx, in, export.DirTarget{Dir: dir})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\n%s (%s)\n", a.Filename, humanize.Bytes(uint64(len(a.Data))))
	return nil
}

// printTable writes the participant table and the summary cards.
func printTable(w io.Writer, snap session.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Tên\tChi Phí Gốc\tThanh Toán\t")
	for _, p := range snap.Participants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n",
			p.Name,
			numfmt.Integer(p.Amount),
			numfmt.Integer(snap.Allocation.PaymentFor(p.ID)),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sum := snap.Summary
	fmt.Fprintf(w, "\nTổng chi phí gốc: %s VND\n", sum.TotalOriginal)
	if sum.ShowDiscount {
		fmt.Fprintf(w, "Giảm giá: %s\n", sum.DiscountLabel)
	}
	fmt.Fprintf(w, "Tổng sau giảm giá: %s VND\n", sum.TotalAfterDiscount)
	return nil
}
