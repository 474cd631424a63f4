// Package docparse converts a PDF document into an ordered sequence of typed semantic
// blocks: page-parallel orchestration over native-decode and layout-inference worker
// pools, geometric fusion of native text / detected layout / OCR fallback, and the
// element-to-block merging state machine with title-level clustering, mirroring
// ferrules' FerrulesParser::parse_document.
package docparse

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rapidpapertrans/docparse/assemble"
	"github.com/rapidpapertrans/docparse/config"
	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/internal/debugdraw"
	"github.com/rapidpapertrans/docparse/internal/logger"
	"github.com/rapidpapertrans/docparse/internal/metrics"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/layoutqueue"
	"github.com/rapidpapertrans/docparse/merge"
	"github.com/rapidpapertrans/docparse/nativeworker"
	"github.com/rapidpapertrans/docparse/ocr"
	"github.com/rapidpapertrans/docparse/pdfsource"
	"github.com/rapidpapertrans/docparse/titles"
)

// Version is reported in every ParsedDocument's metadata.
const Version = "0.1.0"

// ParseConfig is the per-document parse options a caller supplies to Parse; see
// config.ParseConfig for the loaded/defaulted form of the same shape.
type ParseConfig = config.ParseConfig

// Parser owns the long-lived native and layout worker pools and fans page-level work out
// across them for every document it parses.
type Parser struct {
	native      *nativeworker.Worker
	layoutQueue *layoutqueue.Queue
	ocrBackend  ocr.Backend // may be nil: pages needing OCR then keep their sparse native lines
	metrics     *metrics.Metrics
	rasterW     int
	rasterH     int
}

// New builds a Parser around source (the PDF decode backend), detector (the layout model),
// and an optional ocrBackend. queueCapacity bounds how many layout requests may queue
// before a page blocks; intraThreads bounds concurrent detector inference.
func New(source pdfsource.PdfSource, detector layout.Detector, ocrBackend ocr.Backend, queueCapacity, intraThreads int, m *metrics.Metrics) *Parser {
	if m == nil {
		m = metrics.Noop()
	}
	return &Parser{
		native:      nativeworker.NewWorker(source),
		layoutQueue: layoutqueue.New(detector, queueCapacity, intraThreads),
		ocrBackend:  ocrBackend,
		metrics:     m,
		rasterW:     layout.RequiredWidth,
		rasterH:     layout.RequiredHeight,
	}
}

// Parse runs the full pipeline on one document's bytes and returns its structured output.
// Only DocumentLoad, PageRangeOutOfBounds, and Cancelled errors are ever returned; any
// other page-local failure is logged and that page is simply dropped from the result, so a
// handful of malformed pages never sink an otherwise-good document.
func (p *Parser) Parse(ctx context.Context, docName string, data []byte, cfg ParseConfig) (*entities.ParsedDocument, error) {
	start := time.Now()

	pageRange := cfg.PageRange()
	if pageRange != nil {
		total, err := p.native.CountPages(ctx, data, cfg.Password)
		if err != nil {
			return nil, err
		}
		if pageRange.End > total {
			return nil, pdferr.New(pdferr.KindPageRangeOutOfBounds,
				fmt.Sprintf("page range end %d exceeds document length %d", pageRange.End, total), nil)
		}
	}

	pages, err := p.parseDocPages(ctx, data, cfg)
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })

	var allElements []entities.Element
	for _, sp := range pages {
		allElements = append(allElements, sp.Elements...)
	}

	titleLevel := buildTitleLevelFunc(allElements)
	blocks := merge.BuildBlocks(allElements, titleLevel)

	docPages := make([]entities.Page, len(pages))
	for i, sp := range pages {
		docPages[i] = entities.Page{ID: sp.ID, Width: sp.Width, Height: sp.Height, NeedsOCR: sp.NeedsOCR, Image: sp.Image}
	}

	doc := &entities.ParsedDocument{
		DocName: docName,
		Pages:   docPages,
		Blocks:  blocks,
		Metadata: entities.Metadata{
			ParseDurationMS: time.Since(start).Milliseconds(),
			Version:         Version,
		},
	}
	if cfg.DebugDir != "" {
		doc.DebugPath = &cfg.DebugDir
	}
	return doc, nil
}

// buildTitleLevelFunc clusters every Title/Subtitle element's height across the whole
// document and returns a lookup closure merge.BuildBlocks can call per element.
func buildTitleLevelFunc(elements []entities.Element) merge.TitleLevel {
	var headings []titles.Heading
	for _, el := range elements {
		if el.Kind == entities.ElementTitle || el.Kind == entities.ElementSubtitle {
			headings = append(headings, titles.Heading{PageID: el.PageID, ElementID: el.ID, Height: el.BBox.Height()})
		}
	}
	levels := titles.ClusterLevels(headings)
	return func(pageID, elementID int) int {
		return levels[titles.Key{PageID: pageID, ElementID: elementID}]
	}
}

// parseDocPages submits one native-parse request for the whole document, fans each
// resulting page out to its own goroutine doing layout inference + fusion, and collects
// every finished page. Cancellation is checked before a page task starts, before it submits
// to the layout queue, and before its result is collected; on the first cancellation the
// layout queue is flushed exactly once so any already-queued layout requests fail fast
// instead of running to completion for a caller who has stopped listening.
func (p *Parser) parseDocPages(ctx context.Context, data []byte, cfg ParseConfig) ([]entities.StructuredPage, error) {
	resultCh := make(chan nativeworker.Result, nativeworker.MaxConcurrentRequests)
	if err := p.native.Push(ctx, nativeworker.Request{
		DocData:   data,
		Password:  cfg.Password,
		Flatten:   cfg.FlattenPDF,
		PageRange: cfg.PageRange(),
		RasterW:   p.rasterW,
		RasterH:   p.rasterH,
		ResultCh:  resultCh,
	}); err != nil {
		return nil, err
	}

	group, gctx := errgroup.WithContext(ctx)
	var (
		mu     sync.Mutex
		pages  []entities.StructuredPage
		flushed bool
	)
	flushOnce := func() {
		mu.Lock()
		already := flushed
		flushed = true
		mu.Unlock()
		if !already {
			_ = p.layoutQueue.Flush(context.Background())
		}
	}

	for res := range resultCh {
		if res.Err != nil {
			if pdferr.IsFatal(res.Err) {
				return nil, res.Err
			}
			logger.Error("native page parse failed", res.Err)
			continue
		}
		native := res.Page

		if gctx.Err() != nil {
			flushOnce()
			if err := group.Wait(); err != nil {
				return nil, err
			}
			return nil, pdferr.New(pdferr.KindCancelled, "cancelled before spawning page task", gctx.Err())
		}

		group.Go(func() error {
			if gctx.Err() != nil {
				flushOnce()
				return pdferr.New(pdferr.KindCancelled, "cancelled before page task started", gctx.Err()).WithPage(native.PageID)
			}
			page, err := p.parseOnePage(gctx, native, cfg)
			if err != nil {
				if pdferr.IsFatal(err) {
					flushOnce()
					return err
				}
				logger.Error("page assembly failed", err, logger.Page(native.PageID))
				return nil
			}
			if gctx.Err() != nil {
				flushOnce()
				return pdferr.New(pdferr.KindCancelled, "cancelled before collecting page", gctx.Err()).WithPage(native.PageID)
			}
			mu.Lock()
			pages = append(pages, page)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (p *Parser) parseOnePage(ctx context.Context, native nativeworker.PageResult, cfg ParseConfig) (entities.StructuredPage, error) {
	tensor, ratio := layout.Preprocess(native.PageImage)
	rasterBounds := native.PageImage.Bounds()

	if ctx.Err() != nil {
		return entities.StructuredPage{}, pdferr.New(pdferr.KindCancelled, "cancelled before layout submission", ctx.Err()).WithPage(native.PageID)
	}

	respCh := make(chan layoutqueue.Response, 1)
	if err := p.layoutQueue.Push(ctx, layoutqueue.Request{
		PageID:        native.PageID,
		Tensor:        tensor,
		OrigWidth:     rasterBounds.Dx(),
		OrigHeight:    rasterBounds.Dy(),
		Ratio:         ratio,
		RescaleFactor: native.DownscaleFactor,
		ResponseCh:    respCh,
	}); err != nil {
		return entities.StructuredPage{}, err
	}

	var resp layoutqueue.Response
	select {
	case resp = <-respCh:
	case <-ctx.Done():
		return entities.StructuredPage{}, pdferr.New(pdferr.KindCancelled, "cancelled waiting for layout result", ctx.Err()).WithPage(native.PageID)
	}
	if resp.Err != nil {
		return entities.StructuredPage{}, resp.Err
	}

	if ctx.Err() != nil {
		return entities.StructuredPage{}, pdferr.New(pdferr.KindCancelled, "cancelled before collecting page", ctx.Err()).WithPage(native.PageID)
	}

	structured, err := assemble.Assemble(ctx, assemble.Page{
		ID:              native.PageID,
		Width:           native.PageBBox.Width(),
		Height:          native.PageBBox.Height(),
		NativeLines:     native.TextLines,
		Regions:         resp.Regions,
		Image:           native.PageImage,
		ImageScale1:     native.PageImageScale1,
		DownscaleFactor: native.DownscaleFactor,
	}, p.ocrBackend)
	if err != nil {
		return entities.StructuredPage{}, err
	}

	if cfg.DebugDir != "" {
		blocks := merge.BuildBlocks(structured.Elements, nil)
		if err := debugdraw.ExportPage(cfg.DebugDir, native.PageID, native.PageImageScale1, native.TextLines, resp.Regions, blocks); err != nil {
			logger.Error("debug export failed", err, logger.Page(native.PageID))
		}
	}

	return structured, nil
}
