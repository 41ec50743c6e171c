package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"djradar/config"
	"djradar/core/discovery"
	"djradar/core/youtube"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [dj name...]",
	Short: "Run a one-off set discovery for the given DJ names",
	Long:  `Search YouTube for live sets by each named DJ and print what the classifier keeps, without touching any stored library.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if cfg.YouTubeAPIKey == "" {
			log.Fatal("YOUTUBE_API_KEY is not set")
		}

		keywords := discovery.NewKeywordList()
		if cfg.KeywordsFile != "" {
			if err := keywords.LoadFile(cfg.KeywordsFile); err != nil {
				log.Printf("failed to load keywords file %s: %v", cfg.KeywordsFile, err)
			}
		}

		client := youtube.NewClient(cfg.YouTubeAPIKey, cfg.YouTubeBaseURL)
		classifier := discovery.NewClassifier(cfg.MinSetDurationMin, keywords)
		pipeline := discovery.NewPipeline(client, classifier, nil, cfg.SearchMaxPages, cfg.SearchPageSize)

		for _, name := range args {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.DJRefreshTimeoutSec)*time.Second)
			sets, err := pipeline.Discover(ctx, name)
			cancel()
			if err != nil {
				log.Printf("discovery failed for %s: %v", name, err)
				continue
			}

			fmt.Printf("%s: %d sets\n", name, len(sets))
			for _, set := range sets {
				fmt.Printf("  %s  %s  (%s)\n", set.VideoID, set.Title, set.PublishDate.Format("2006-01-02"))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
