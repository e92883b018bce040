/*
Package crawl drives the page pipeline: fetch, extract, resolve attachments,
download and mine each document, accumulate. Pages advance sequentially with
a polite delay; within a page, announcements are processed by a bounded
worker pool. No failure propagates past the controller. Everything becomes
either a stop decision or a degraded record, and whatever was collected
before the stop is still emitted.
*/
package crawl

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jcondori/convoscraper/internal/fetch"
	"github.com/jcondori/convoscraper/internal/types"
)

// StopReason records why the crawl ended.
type StopReason string

const (
	StopNotFound         StopReason = "not_found"
	StopNoStructural     StopReason = "no_structural_match"
	StopNoAnnouncements  StopReason = "no_announcements"
	StopPageLimit        StopReason = "page_limit"
	StopContextCancelled StopReason = "context_cancelled"
)

// PageFetcher retrieves a listing page by 1-based index.
type PageFetcher interface {
	Fetch(ctx context.Context, page int) (string, error)
}

// Extractor parses a page into open announcements and reports whether the
// page carried the listing markers at all.
type Extractor interface {
	Extract(content string, page int) ([]types.Announcement, bool)
}

// Resolver attaches document URLs to a page's announcements.
type Resolver interface {
	Resolve(anns []types.Announcement, content string) []types.Announcement
}

// Downloader fetches one document and returns its local path.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// BlockExtractor mines a downloaded document for its technical block.
type BlockExtractor interface {
	Extract(ctx context.Context, path string) (segment string, usedOCR bool)
}

// Summarizer optionally condenses a technical block. May be nil.
type Summarizer interface {
	Summarize(ctx context.Context, ann types.Announcement, block string) (*types.TechSummary, error)
}

type Controller struct {
	fetcher    PageFetcher
	extractor  Extractor
	resolver   Resolver
	downloader Downloader
	blocks     BlockExtractor
	summarizer Summarizer

	maxPages  int
	pageDelay time.Duration
	workers   int64
	log       *zap.SugaredLogger
}

func NewController(
	fetcher PageFetcher,
	extractor Extractor,
	resolver Resolver,
	downloader Downloader,
	blocks BlockExtractor,
	summarizer Summarizer,
	maxPages int,
	pageDelay time.Duration,
	workers int,
	log *zap.SugaredLogger,
) *Controller {
	if workers < 1 {
		workers = 1
	}
	return &Controller{
		fetcher:    fetcher,
		extractor:  extractor,
		resolver:   resolver,
		downloader: downloader,
		blocks:     blocks,
		summarizer: summarizer,
		maxPages:   maxPages,
		pageDelay:  pageDelay,
		workers:    int64(workers),
		log:        log,
	}
}

// Run walks pages starting at 1 until a stop condition and returns everything
// collected up to that point. The slice is in crawl order; final ordering is
// the snapshot builder's job.
func (c *Controller) Run(ctx context.Context) ([]types.Announcement, StopReason) {
	var collected []types.Announcement

	for page := 1; page <= c.maxPages; page++ {
		if page > 1 {
			if !c.sleepBetweenPages(ctx) {
				return collected, StopContextCancelled
			}
		}

		content, err := c.fetcher.Fetch(ctx, page)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return collected, StopContextCancelled
			}
			if !errors.Is(err, fetch.ErrNotFound) {
				c.log.Errorw("page fetch failed, stopping crawl", "page", page, "error", err)
			}
			return collected, StopNotFound
		}

		anns, hasMarkers := c.extractor.Extract(content, page)
		if !hasMarkers {
			c.log.Infow("page has no listing markers, stopping crawl", "page", page)
			return collected, StopNoStructural
		}
		if len(anns) == 0 {
			if page > 1 {
				// A later page with zero open announcements is the end of
				// the list, not a transient gap.
				c.log.Infow("no open announcements past first page, stopping crawl", "page", page)
				return collected, StopNoAnnouncements
			}
			c.log.Infow("no open announcements on first page", "page", page)
			continue
		}

		anns = c.resolver.Resolve(anns, content)
		c.processPage(ctx, anns)
		collected = append(collected, anns...)
		c.log.Infow("page processed", "page", page, "open_announcements", len(anns))
	}

	c.log.Warnw("page safety limit reached, stopping crawl", "max_pages", c.maxPages)
	return collected, StopPageLimit
}

// processPage downloads and mines each announcement's attachment with a
// bounded number of workers. Announcements on the same page are independent;
// each worker touches only its own record. Cancellation stops admitting new
// work, but workers already running are always waited for, so no goroutine
// can touch a record after this returns.
func (c *Controller) processPage(ctx context.Context, anns []types.Announcement) {
	sem := semaphore.NewWeighted(c.workers)
	var wg sync.WaitGroup
	for i := range anns {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(ann *types.Announcement) {
			defer wg.Done()
			defer sem.Release(1)
			c.processAnnouncement(ctx, ann)
		}(&anns[i])
	}
	wg.Wait()
}

func (c *Controller) processAnnouncement(ctx context.Context, ann *types.Announcement) {
	if ann.Attachment == nil || ann.Attachment.SourceURL == "" {
		return
	}
	att := ann.Attachment

	local, err := c.downloader.Download(ctx, att.SourceURL)
	if err != nil {
		c.log.Warnw("attachment download failed", "reference", ann.ReferenceID, "url", att.SourceURL, "error", err)
		return
	}
	att.Downloaded = true
	att.LocalFilename = local

	segment, usedOCR := c.blocks.Extract(ctx, local)
	att.TechnicalBlock = segment
	att.UsedOCR = usedOCR

	if c.summarizer != nil && segment != "" {
		summary, err := c.summarizer.Summarize(ctx, *ann, segment)
		if err != nil {
			c.log.Warnw("technical block summary failed", "reference", ann.ReferenceID, "error", err)
		} else {
			att.Summary = summary
		}
	}
}

// sleepBetweenPages applies the polite inter-page delay, returning false when
// the context ends first.
func (c *Controller) sleepBetweenPages(ctx context.Context) bool {
	if c.pageDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(c.pageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
