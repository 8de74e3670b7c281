package inventory

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSections bounds parallel API calls so a full collection stays
// under the EC2 describe rate limits.
const maxConcurrentSections = 10

// CollectConcurrent gathers the requested sections in parallel. Semantics
// match Collect exactly: the VPC details fetch is the only fatal failure,
// every other section failure lands in that section's result. Only the
// scheduling differs.
func CollectConcurrent(ctx context.Context, q QueryService, vpcID string, opts Options) (*CollectionResult, error) {
	details, err := FetchVPCDetails(ctx, q, vpcID)
	if err != nil {
		return nil, err
	}

	sections := selectSections(opts.Sections)
	log.Info().Str("vpc_id", vpcID).Str("region", q.Region()).
		Int("sections", len(sections)).Msg("starting concurrent collection")

	collectors := buildCollectors(q, vpcID, details)
	progress := opts.progress()

	result := newCollectionResult(q, vpcID)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSections)

	for _, section := range sections {
		collector, ok := collectors[section]
		if !ok {
			continue
		}
		g.Go(func() error {
			progress.SectionStarted(section)
			sectionResult := runSection(gctx, section, collector)
			progress.SectionFinished(section, sectionResult)

			mu.Lock()
			result.Sections[section] = sectionResult
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	log.Info().Str("vpc_id", vpcID).Int("sections", len(result.Sections)).Msg("concurrent collection complete")
	return result, nil
}
