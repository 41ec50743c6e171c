package discovery

import (
	"context"
	"strings"

	"djradar/apperr"
	"djradar/core/youtube"
	"djradar/logger"
	"djradar/model"
)

// DetailCache is the optional upstream-response cache consulted before
// the batch detail fetch. Both methods must tolerate partial results.
type DetailCache interface {
	GetDetails(ctx context.Context, ids []string) (hits []youtube.VideoDetail, missing []string)
	PutDetails(ctx context.Context, details []youtube.VideoDetail)
}

// Pipeline orchestrates paginated search, id dedup, batch detail fetch
// and classification for one DJ name.
type Pipeline struct {
	client     *youtube.Client
	classifier *Classifier
	cache      DetailCache // may be nil
	maxPages   int
	pageSize   int
}

// NewPipeline creates a discovery pipeline. cache may be nil.
func NewPipeline(client *youtube.Client, classifier *Classifier, cache DetailCache, maxPages, pageSize int) *Pipeline {
	if maxPages <= 0 {
		maxPages = 2
	}
	if pageSize <= 0 {
		pageSize = 25
	}
	return &Pipeline{
		client:     client,
		classifier: classifier,
		cache:      cache,
		maxPages:   maxPages,
		pageSize:   pageSize,
	}
}

// Discover returns the classified live sets for djName.
//
// Upstream trouble (missing API key, HTTP failure, rate limit,
// cancellation mid-flight) degrades to an empty result with a nil error;
// it is logged, never propagated. The only returned error is the
// programmer error of an empty djName.
func (p *Pipeline) Discover(ctx context.Context, djName string) ([]model.DiscoveredSet, error) {
	query := strings.TrimSpace(djName)
	if query == "" {
		return nil, apperr.InvalidArgumentf("dj name is required")
	}

	if !p.client.HasAPIKey() {
		logger.Error("YOUTUBE_API_KEY is missing, skipping discovery",
			logger.String("dj", query))
		return []model.DiscoveredSet{}, nil
	}

	ids := p.searchVideoIDs(ctx, query)
	if len(ids) == 0 {
		return []model.DiscoveredSet{}, nil
	}

	details, ok := p.fetchDetails(ctx, query, ids)
	if !ok {
		return []model.DiscoveredSet{}, nil
	}

	return p.classifier.Classify(details, query), nil
}

// searchVideoIDs pages through search results and returns the
// deduplicated video ids in first-seen order.
func (p *Pipeline) searchVideoIDs(ctx context.Context, query string) []string {
	seen := make(map[string]struct{})
	var ids []string

	pageToken := ""
	for page := 0; page < p.maxPages; page++ {
		result, err := p.client.Search(ctx, query, pageToken, p.pageSize)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("search aborted", logger.String("dj", query))
			} else {
				logger.Error("search request failed",
					logger.String("dj", query), logger.ErrorField(err))
			}
			return nil
		}

		for _, item := range result.Items {
			if _, dup := seen[item.VideoID]; dup {
				continue
			}
			seen[item.VideoID] = struct{}{}
			ids = append(ids, item.VideoID)
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return ids
}

// fetchDetails resolves detail records for ids, cache first, then one
// batch API call for the misses. ok is false when the upstream call failed.
func (p *Pipeline) fetchDetails(ctx context.Context, query string, ids []string) ([]youtube.VideoDetail, bool) {
	var details []youtube.VideoDetail
	missing := ids

	if p.cache != nil {
		var hits []youtube.VideoDetail
		hits, missing = p.cache.GetDetails(ctx, ids)
		details = append(details, hits...)
	}

	if len(missing) > 0 {
		fetched, err := p.client.VideoDetails(ctx, missing)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("detail fetch aborted", logger.String("dj", query))
			} else {
				logger.Error("detail fetch failed",
					logger.String("dj", query), logger.ErrorField(err))
			}
			return nil, false
		}
		if p.cache != nil {
			p.cache.PutDetails(ctx, fetched)
		}
		details = append(details, fetched...)
	}

	// The same video can come back from both cache and API across
	// overlapping refreshes; collapse by id.
	unique := make([]youtube.VideoDetail, 0, len(details))
	seen := make(map[string]struct{}, len(details))
	for _, d := range details {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		unique = append(unique, d)
	}
	return unique, true
}
