// Command gacha-scrape locates a gacha log URL in a game client's web
// cache, scrapes every page of every gacha type from the vendor API, and
// writes the result to a UIGF/SRGF-shaped export file, checkpointing
// progress so a re-run only fetches pulls newer than the last one seen.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/distr1/gachalog/internal/gachaerr"
	"github.com/distr1/gachalog/internal/gachaexport"
	"github.com/distr1/gachalog/internal/gachascraper"
	"github.com/distr1/gachalog/internal/gachastore"
	"github.com/distr1/gachalog/internal/gamebiz"
	"github.com/distr1/gachalog/internal/urlfinder"
)

// defaultGachaTypes lists the gacha_type values scraped when -gacha_types
// is left empty, keyed by the game the discovered URL belongs to.
var defaultGachaTypes = map[gamebiz.Game][]string{
	gamebiz.Hk4e:  {"100", "200", "301", "302", "500"},
	gamebiz.Hkrpg: {"1", "2", "11", "12"},
	gamebiz.Nap:   {"1", "2", "3", "5"},
}

func gachaTypesFor(gb gamebiz.GameBiz, override string) []string {
	if override != "" {
		return strings.Split(override, ",")
	}
	return defaultGachaTypes[gb.Game]
}

func logic(ctx context.Context, logger *log.Logger, cacheDir, storePath, exportPath string, webCaches bool, gachaTypesOverride string, colorProgress bool) error {
	var dirty []urlfinder.DirtyGachaUrl
	var err error
	if webCaches {
		dirty, err = urlfinder.FromWebCaches(cacheDir, urlfinder.Valid())
	} else {
		dirty, err = urlfinder.FromDiskCache(cacheDir, urlfinder.Valid())
	}
	if err != nil {
		return gachaerr.Wrap("gacha-scrape.locate", "locating gacha url", err)
	}
	if len(dirty) == 0 {
		return gachaerr.New("gacha-scrape.locate", "no gacha url found in cache")
	}
	logger.Printf("found %d candidate url(s), using the most recent", len(dirty))

	parsed, err := urlfinder.ParseGachaURL(dirty[0].Value)
	if err != nil {
		return gachaerr.Wrap("gacha-scrape.parse", "parsing gacha url", err)
	}

	store, err := gachastore.Open(storePath)
	if err != nil {
		return gachaerr.Wrap("gacha-scrape.store", "opening cursor store", err)
	}

	uid := strconv.FormatUint(uint64(parsed.Uid), 10)
	gachaTypes := gachaTypesFor(parsed.GameBiz, gachaTypesOverride)
	cursors := make([]gachascraper.GachaTypeCursor, len(gachaTypes))
	for i, gt := range gachaTypes {
		cursors[i] = gachascraper.GachaTypeCursor{GachaType: gt, LastEndID: store.LastEndID(uid, gt)}
	}
	mappings := []gachascraper.EndpointMapping{
		{Endpoint: gamebiz.Standard, Cursors: cursors},
	}

	requester := gachascraper.NewRequester()
	scraper := gachascraper.NewGachaLogsScraper(gachascraper.NewRetryingRequester(requester), parsed, 20, nil)

	notify := make(chan gachascraper.Notify, 1)
	var eg errgroup.Group
	eg.Go(func() error {
		for n := range notify {
			logProgress(logger, n, colorProgress)
		}
		return nil
	})

	var records []gachascraper.Record
	eg.Go(func() error {
		defer close(notify)
		var scrapeErr error
		records, scrapeErr = scraper.Scrapes(ctx, mappings, notify)
		return scrapeErr
	})

	if err := eg.Wait(); err != nil {
		return gachaerr.Wrap("gacha-scrape.scrape", "scraping gacha logs", err)
	}

	for _, r := range records {
		endID := r.ID
		gt := strconv.FormatUint(uint64(r.GachaType), 10)
		if cur := store.LastEndID(uid, gt); cur == "" || endID > cur {
			store.SetLastEndID(uid, gt, endID)
		}
	}
	if err := store.Save(); err != nil {
		return gachaerr.Wrap("gacha-scrape.store", "saving cursor store", err)
	}

	env := gachaexport.Build(records, uid, parsed.Lang, parsed.Region, "gacha-scrape", time.Now().Format("2006-01-02 15:04:05"))
	f, err := os.Create(exportPath)
	if err != nil {
		return gachaerr.Wrap("gacha-scrape.export", "creating export file", err)
	}
	defer f.Close()
	if strings.HasSuffix(exportPath, ".gz") {
		err = gachaexport.WriteGzip(f, env)
	} else {
		err = gachaexport.WriteJSON(f, env)
	}
	if err != nil {
		return gachaerr.Wrap("gacha-scrape.export", "writing export file", err)
	}

	logger.Printf("wrote %d records to %s", len(records), exportPath)
	return nil
}

func logProgress(logger *log.Logger, n gachascraper.Notify, color bool) {
	switch v := n.(type) {
	case gachascraper.NotifyReady:
		logger.Printf(progressLine(color, "34", "ready: gacha_type=%s"), v.GachaType)
	case gachascraper.NotifySleeping:
		logger.Print(progressLine(color, "33", "pacing: sleeping"))
	case gachascraper.NotifyPagination:
		logger.Printf(progressLine(color, "36", "page %d"), v.Page)
	case gachascraper.NotifyData:
		logger.Printf(progressLine(color, "36", "received %d record(s)"), len(v.Records))
	case gachascraper.NotifyCompleted:
		logger.Printf(progressLine(color, "32", "completed: gacha_type=%s"), v.GachaType)
	case gachascraper.NotifyFinished:
		logger.Print(progressLine(color, "32", "finished"))
	}
}

func progressLine(color bool, ansiCode, format string) string {
	if !color {
		return format
	}
	return "\x1b[" + ansiCode + "m" + format + "\x1b[0m"
}

func main() {
	var (
		cacheDir    = flag.String("cache_dir", "", "path to the game client's disk cache (Cache_Data folder, or the webCaches root with -web_caches)")
		webCaches   = flag.Bool("web_caches", false, "treat -cache_dir as a webCaches root containing versioned subdirectories")
		storePath   = flag.String("store", "gacha-cursors.json", "path to the cursor checkpoint file")
		exportPath  = flag.String("export", "gacha-log.json", "path to write the exported gacha log (.gz suffix gzips the output)")
		gachaTypes  = flag.String("gacha_types", "", "comma-separated gacha_type values to scrape (defaults to the game's known set)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "gacha-scrape: ", log.LstdFlags)
	colorProgress := isatty.IsTerminal(os.Stdout.Fd())

	ctx, canc := interruptibleContext()
	defer canc()

	if *cacheDir == "" {
		logger.Fatal("-cache_dir is required")
	}

	if err := logic(ctx, logger, *cacheDir, *storePath, *exportPath, *webCaches, *gachaTypes, colorProgress); err != nil {
		logger.Fatalf("%+v", err)
	}
}
