package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// downloadProviders are the sources a download can fetch from. The file
// source is excluded since it already is a local file.
var downloadProviders = []feed.Source{feed.SourcePolygon, feed.SourceBinance, feed.SourceGenerator}

func parseProvider(name string) (feed.Source, error) {
	source := feed.Source(name)
	if !slices.Contains(downloadProviders, source) {
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider %q, expected one of %v", name, downloadProviders)
	}

	return source, nil
}

func parseSymbols(s string) []string {
	var symbols []string

	for _, symbol := range strings.Split(s, ",") {
		if symbol = strings.TrimSpace(symbol); symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

// outputPath names the parquet file after its contents, e.g.
// data/AAPL-MSFT_2024-01-01_2024-02-01_1h.parquet.
func outputPath(dir string, symbols []string, start, end time.Time, timespan feed.Timespan) string {
	name := fmt.Sprintf("%s_%s_%s_%s.parquet",
		strings.Join(symbols, "-"), start.Format(time.DateOnly), end.Format(time.DateOnly), timespan)

	return filepath.Join(dir, name)
}
