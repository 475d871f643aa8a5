package report

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/scanreport/internal/model"
)

// GenerateAll runs every generator against the same summary and results and
// returns the documents in generator order.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because generation is CPU-bound and short; errgroup bounds parallelism
// and stops scheduling new generators once one fails or ctx is cancelled.
// The snapshot and the sealed registry are read-only, so generators share
// them without locks.
func GenerateAll(ctx context.Context, gens []Generator, summary *model.ScanSummary, results *model.PluginResults) ([]*Document, error) {
	docs := make([]*Document, len(gens))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, gen := range gens {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := gen.Generate(summary, results)
			if err != nil {
				return fmt.Errorf("%s report: %w", gen.Format(), err)
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
