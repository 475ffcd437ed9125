package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"contract-console/internal/documents"
	"contract-console/internal/loading"
	"contract-console/internal/shared/config"
	"contract-console/internal/shared/telemetry"
	"contract-console/internal/uploads"
	"contract-console/internal/visualization"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "PDF contract to upload")
	documentID := flag.String("id", "", "poll an already uploaded document instead of uploading")
	apiBase := flag.String("api", cfg.APIBaseURL, "analysis backend base URL")
	retries := flag.Int("retry", 0, "number of manual retries after a stall or connection failure")
	flag.Parse()

	if *filePath == "" && flag.NArg() > 0 {
		*filePath = flag.Arg(0)
	}
	if *filePath == "" && *documentID == "" {
		fmt.Fprintln(os.Stderr, "usage: contractctl [-retry N] contract.pdf | -id DOCUMENT_ID")
		os.Exit(2)
	}

	telemetry.Configure(os.Stderr, firstNonEmpty(os.Getenv("LOG_LEVEL"), "warn"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := documents.NewClient(*apiBase, cfg.HTTPClientTimeout)

	id := strings.TrimSpace(*documentID)
	if id == "" {
		outcome, err := upload(ctx, cfg, docs, *filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Upload failed: %s\n", outcome.Error)
			os.Exit(1)
		}
		fmt.Printf("uploaded %s as document %s\n", outcome.Filename, outcome.DocumentID)
		id = outcome.DocumentID
	}

	if err := follow(ctx, cfg, docs, id, *retries); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	model, err := visualization.NewHandler(docs, cfg.AppName).Load(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to fetch document data: %v\n", err)
		os.Exit(1)
	}
	out, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func upload(ctx context.Context, cfg config.Config, docs *documents.Client, path string) (uploads.Outcome, error) {
	svc := uploads.NewService(cfg, docs)

	f, err := os.Open(path)
	if err != nil {
		return uploads.Outcome{Error: err.Error()}, err
	}
	defer f.Close()

	sel, err := svc.Inspect(filepath.Base(path), "application/pdf", f)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, uploads.ErrNotPDF) {
			msg = cfg.Texts.NotPDF()
		}
		return uploads.Outcome{Error: msg}, err
	}
	return svc.Submit(ctx, sel)
}

// follow polls until the analysis completes, retrying terminal failures at
// most retries times.
func follow(ctx context.Context, cfg config.Config, docs *documents.Client, id string, retries int) error {
	sess := loading.Start(ctx, uuid.NewString(), id, docs, loading.Options{
		Interval:     cfg.PollInterval,
		StallTimeout: cfg.StallTimeout,
		Texts:        cfg.Texts,
	})
	defer sess.Close()

	last := ""
	for {
		st, err := sess.Wait(ctx, func(s loading.State) bool {
			return s.Terminal() || s.Message(cfg.Texts) != last
		})
		if err != nil {
			return err
		}
		if msg := st.Message(cfg.Texts); msg != "" && msg != last {
			fmt.Println(msg)
			last = msg
		}

		switch st.Phase {
		case loading.PhaseComplete:
			return nil
		case loading.PhaseStalled, loading.PhaseFailed:
			fmt.Fprintf(os.Stderr, "Error: %s\n", st.Reason)
			if retries <= 0 {
				return fmt.Errorf("analysis of document %s did not finish", id)
			}
			retries--
			if _, err := sess.Retry(ctx); err != nil {
				return err
			}
			last = ""
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
