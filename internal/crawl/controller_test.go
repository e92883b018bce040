package crawl

import (
	"context"
	"errors"
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcondori/convoscraper/internal/fetch"
	"github.com/jcondori/convoscraper/internal/types"
)

type pageResult struct {
	anns       []types.Announcement
	hasMarkers bool
}

type fakeFetcher struct {
	errs  map[int]error
	known map[int]bool
}

func (f fakeFetcher) Fetch(_ context.Context, page int) (string, error) {
	if err := f.errs[page]; err != nil {
		return "", err
	}
	if !f.known[page] {
		return "", fetch.ErrNotFound
	}
	return fmt.Sprintf("page-%d", page), nil
}

type fakeExtractor struct {
	pages map[int]pageResult
}

func (f fakeExtractor) Extract(_ string, page int) ([]types.Announcement, bool) {
	r := f.pages[page]
	return r.anns, r.hasMarkers
}

// fakeResolver attaches a per-announcement document URL derived from the
// reference, leaving records with an empty reference bare.
type fakeResolver struct{}

func (fakeResolver) Resolve(anns []types.Announcement, _ string) []types.Announcement {
	for i := range anns {
		if anns[i].ReferenceID != "" {
			anns[i].Attachment = &types.Attachment{
				SourceURL: "https://example.org/archivos/" + anns[i].ReferenceID + ".pdf",
			}
		}
	}
	return anns
}

type fakeDownloader struct {
	failing map[string]bool
}

func (f fakeDownloader) Download(_ context.Context, url string) (string, error) {
	if f.failing[url] {
		return "", errors.New("connection reset")
	}
	return "data/tdr/" + path.Base(url), nil
}

type fakeBlocks struct {
	segment string
	usedOCR bool
}

func (f fakeBlocks) Extract(context.Context, string) (string, bool) {
	return f.segment, f.usedOCR
}

type fakeSummarizer struct {
	calls int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ types.Announcement, _ string) (*types.TechSummary, error) {
	f.calls++
	return &types.TechSummary{Points: []string{"motor de 5 HP"}}, nil
}

func ann(ref string, page int) types.Announcement {
	return types.Announcement{
		ReferenceID: ref,
		Description: "ADQUISICION DE PRUEBA " + ref,
		Status:      types.StatusOpen,
		SourcePage:  page,
	}
}

func newTestController(fetcher PageFetcher, extractor Extractor, maxPages int, opts ...func(*Controller)) *Controller {
	c := NewController(
		fetcher,
		extractor,
		fakeResolver{},
		fakeDownloader{},
		fakeBlocks{},
		nil,
		maxPages,
		0, // no polite delay in tests
		2,
		zap.NewNop().Sugar(),
	)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func TestRunCollectsUntilNotFound(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true, 2: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1), ann("4018-2025", 1)}, hasMarkers: true},
		2: {anns: []types.Announcement{ann("4019-2025", 2)}, hasMarkers: true},
	}}

	collected, reason := newTestController(fetcher, extractor, 30).Run(context.Background())

	assert.Equal(t, StopNotFound, reason)
	require.Len(t, collected, 3)
	assert.Equal(t, "4017-2025", collected[0].ReferenceID)
	assert.Equal(t, "4019-2025", collected[2].ReferenceID)
}

func TestRunStopsOnEmptyLaterPage(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true, 2: true, 3: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1)}, hasMarkers: true},
		2: {hasMarkers: true}, // listing markers present, zero open entries
		3: {anns: []types.Announcement{ann("9999-2025", 3)}, hasMarkers: true},
	}}

	collected, reason := newTestController(fetcher, extractor, 30).Run(context.Background())

	assert.Equal(t, StopNoAnnouncements, reason)
	require.Len(t, collected, 1, "page 3 must never be reached")
	assert.Equal(t, "4017-2025", collected[0].ReferenceID)
}

func TestRunEmptyFirstPageContinues(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true, 2: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {hasMarkers: true},
		2: {anns: []types.Announcement{ann("4020-2025", 2)}, hasMarkers: true},
	}}

	collected, reason := newTestController(fetcher, extractor, 30).Run(context.Background())

	assert.Equal(t, StopNotFound, reason)
	require.Len(t, collected, 1)
	assert.Equal(t, "4020-2025", collected[0].ReferenceID)
}

func TestRunStopsOnNonListingPage(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true, 2: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1)}, hasMarkers: true},
		2: {hasMarkers: false},
	}}

	collected, reason := newTestController(fetcher, extractor, 30).Run(context.Background())

	assert.Equal(t, StopNoStructural, reason)
	assert.Len(t, collected, 1)
}

func TestRunStopsAtPageLimit(t *testing.T) {
	known := map[int]bool{}
	pages := map[int]pageResult{}
	for p := 1; p <= 5; p++ {
		known[p] = true
		pages[p] = pageResult{anns: []types.Announcement{ann(fmt.Sprintf("400%d-2025", p), p)}, hasMarkers: true}
	}

	collected, reason := newTestController(fakeFetcher{known: known}, fakeExtractor{pages: pages}, 3).Run(context.Background())

	assert.Equal(t, StopPageLimit, reason)
	assert.Len(t, collected, 3)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := fakeFetcher{errs: map[int]error{1: context.Canceled}}
	collected, reason := newTestController(fetcher, fakeExtractor{}, 30).Run(ctx)

	assert.Equal(t, StopContextCancelled, reason)
	assert.Empty(t, collected)
}

func TestProcessPagePopulatesAttachment(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1)}, hasMarkers: true},
	}}
	summarizer := &fakeSummarizer{}
	c := newTestController(fetcher, extractor, 30, func(c *Controller) {
		c.blocks = fakeBlocks{segment: "CARACTERISTICAS TECNICAS\nMotor de 5 HP", usedOCR: true}
		c.summarizer = summarizer
	})

	collected, _ := c.Run(context.Background())

	require.Len(t, collected, 1)
	att := collected[0].Attachment
	require.NotNil(t, att)
	assert.True(t, att.Downloaded)
	assert.Equal(t, "data/tdr/4017-2025.pdf", att.LocalFilename)
	assert.Contains(t, att.TechnicalBlock, "Motor de 5 HP")
	assert.True(t, att.UsedOCR)
	require.NotNil(t, att.Summary)
	assert.Equal(t, 1, summarizer.calls)
}

func TestProcessPageDownloadFailureDegradesRecord(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1), ann("4018-2025", 1)}, hasMarkers: true},
	}}
	c := newTestController(fetcher, extractor, 30, func(c *Controller) {
		c.downloader = fakeDownloader{failing: map[string]bool{
			"https://example.org/archivos/4017-2025.pdf": true,
		}}
		c.blocks = fakeBlocks{segment: "Motor de 5 HP"}
	})

	collected, _ := c.Run(context.Background())

	require.Len(t, collected, 2)
	failed, ok := collected[0], collected[1]
	require.NotNil(t, failed.Attachment)
	assert.False(t, failed.Downloaded)
	assert.Empty(t, failed.TechnicalBlock, "a failed download keeps the record but never mines it")
	assert.True(t, ok.Downloaded)
	assert.Equal(t, "Motor de 5 HP", ok.TechnicalBlock)
}

func TestProcessPageSkipsBareAnnouncements(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{{Description: "SIN NUMERO", Status: types.StatusOpen, SourcePage: 1}}, hasMarkers: true},
	}}

	collected, _ := newTestController(fetcher, extractor, 30).Run(context.Background())

	require.Len(t, collected, 1)
	assert.Nil(t, collected[0].Attachment)
}

// gatedDownloader blocks every download until release is closed, ignoring
// the context, so a cancelled run has an in-flight worker to wait for.
type gatedDownloader struct {
	started chan struct{}
	release chan struct{}
}

func (d *gatedDownloader) Download(_ context.Context, url string) (string, error) {
	close(d.started)
	<-d.release
	return "data/tdr/" + path.Base(url), nil
}

func TestRunWaitsForInFlightWorkersOnCancel(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1)}, hasMarkers: true},
	}}
	downloader := &gatedDownloader{started: make(chan struct{}), release: make(chan struct{})}
	c := newTestController(fetcher, extractor, 30, func(c *Controller) {
		c.downloader = downloader
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []types.Announcement, 1)
	go func() {
		collected, _ := c.Run(ctx)
		done <- collected
	}()

	<-downloader.started
	cancel()

	// The worker is still inside the download; Run must not hand the
	// records back while it can still write to them.
	select {
	case <-done:
		t.Fatal("Run returned with a worker still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(downloader.release)
	collected := <-done

	require.Len(t, collected, 1)
	require.NotNil(t, collected[0].Attachment)
	assert.True(t, collected[0].Downloaded, "the worker's writes must be visible before Run returns")
}

func TestSummarizerSkippedForEmptyBlock(t *testing.T) {
	fetcher := fakeFetcher{known: map[int]bool{1: true}}
	extractor := fakeExtractor{pages: map[int]pageResult{
		1: {anns: []types.Announcement{ann("4017-2025", 1)}, hasMarkers: true},
	}}
	summarizer := &fakeSummarizer{}
	c := newTestController(fetcher, extractor, 30, func(c *Controller) {
		c.summarizer = summarizer
	})

	c.Run(context.Background())

	assert.Zero(t, summarizer.calls)
}
