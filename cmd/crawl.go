package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/seoulmaps/placemeta/internal/crawl"
	"github.com/seoulmaps/placemeta/internal/driver"
	"github.com/seoulmaps/placemeta/internal/fetcher"
)

var crawlNoPersist bool

var crawlCmd = &cobra.Command{
	Use:   "crawl <place-name>",
	Short: "Crawl one place listing and persist its graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		placeName := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.EnsureSchema(ctx); err != nil {
			return eris.Wrap(err, "ensure schema")
		}

		session, err := driver.NewPlaywright(driver.Options{
			Headless:       cfg.Browser.Headless,
			UserAgent:      cfg.Browser.UserAgent,
			Locale:         cfg.Browser.Locale,
			TimezoneID:     cfg.Browser.Timezone,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
		})
		if err != nil {
			return eris.Wrap(err, "start browser")
		}
		defer session.Close() //nolint:errcheck

		images := fetcher.NewImages(
			time.Duration(cfg.Download.TimeoutSecs)*time.Second,
			rate.Limit(cfg.Download.RatePerSec),
			1,
		)

		crawler := crawl.New(session, images, cfg.Crawl, cfg.Download)
		graph, err := crawler.Crawl(ctx, placeName)
		if err != nil {
			return eris.Wrapf(err, "crawl %q", placeName)
		}

		zap.L().Info("crawl complete",
			zap.String("place", placeName),
			zap.Int("reviews", len(graph.Reviews)),
			zap.Bool("blog", graph.Blog != nil),
			zap.Int("photos", len(graph.Photos)),
		)

		if crawlNoPersist {
			zap.L().Info("persistence skipped")
			return nil
		}

		placeID, err := st.SavePlaceGraph(ctx, graph)
		if err != nil {
			return eris.Wrap(err, "save place graph")
		}

		zap.L().Info("place graph saved", zap.Int64("place_id", placeID))
		return nil
	},
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlNoPersist, "no-persist", false, "crawl and report without writing to the store")
	rootCmd.AddCommand(crawlCmd)
}
