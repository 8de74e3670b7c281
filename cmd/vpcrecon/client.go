package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/netscribe/vpcrecon/awsquery"
	"github.com/netscribe/vpcrecon/reportcache"
)

// newQueryClient builds the AWS query client from the merged configuration.
// The returned cache is nil when caching is disabled; the caller closes it.
func newQueryClient(ctx context.Context) (*awsquery.Client, *reportcache.Cache, error) {
	var cache *reportcache.Cache
	if cfg.Cache.Enabled {
		opened, err := reportcache.Open(cfg.CachePath())
		if err != nil {
			// Collection still works without a cache.
			log.Warn().Err(err).Str("path", cfg.CachePath()).Msg("cache unavailable, continuing without it")
		} else {
			cache = opened
		}
	}

	client, err := awsquery.New(ctx, awsquery.Options{
		Profile:  cfg.AWS.Profile,
		Region:   cfg.AWS.DefaultRegion,
		Cache:    cache,
		CacheTTL: cfg.Cache.TTL,
	})
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, nil, err
	}
	return client, cache, nil
}
