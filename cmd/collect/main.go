// collect 手动执行一次采集并以 JSON 输出，便于排查各数据源。
//
// Usage:
//
//	collect articles --category DevOps --limit 20
//	collect trending --language go --since weekly
//	collect warm     # 执行一轮缓存预热
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/LJTian/Updevted/internal/aggregator"
	"github.com/LJTian/Updevted/internal/collector"
	"github.com/LJTian/Updevted/internal/config"
	"github.com/LJTian/Updevted/internal/scheduler"
	"github.com/LJTian/Updevted/internal/storage"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a single collection and print the result",
	}

	rootCmd.AddCommand(articlesCmd())
	rootCmd.AddCommand(trendingCmd())
	rootCmd.AddCommand(warmCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func articlesCmd() *cobra.Command {
	var category, tag string
	var limit int

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "聚合所有数据源的文章",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			items, err := aggregator.NewFromConfig(cfg).Aggregate(ctx, category, tag, limit)
			if err != nil {
				return fmt.Errorf("aggregate: %w", err)
			}
			return printJSON(items)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "分类过滤，留空或 all 表示全部")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "透传给各数据源的标签")
	cmd.Flags().IntVarP(&limit, "limit", "n", aggregator.DefaultLimit, "文章总数上限")
	return cmd
}

func trendingCmd() *cobra.Command {
	var language, since string

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "获取 GitHub 趋势仓库",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			t := collector.NewTrendingFetcher(cfg.TrendingAPIURL, cfg.UserAgent, cfg.HTTPTimeout)
			return printJSON(t.Fetch(ctx, language, since))
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "编程语言，留空表示全部")
	cmd.Flags().StringVarP(&since, "since", "s", collector.SinceDaily, "daily / weekly / monthly")
	return cmd
}

func warmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "执行一轮缓存预热后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			store := storage.NewStore(cfg.RedisAddr, cfg.CacheTTL)
			trending := collector.NewTrendingFetcher(cfg.TrendingAPIURL, cfg.UserAgent, cfg.HTTPTimeout)

			s, err := scheduler.New(cfg.CronSpec, aggregator.NewFromConfig(cfg), store, trending, store)
			if err != nil {
				return fmt.Errorf("init scheduler: %w", err)
			}
			s.RunOnce()
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
