// Command seed fills a development database with sample shop data.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"buildnchill-shop/internal/catalog"
	catalogdb "buildnchill-shop/internal/catalog/db"
	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/database"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/site"
	sitedb "buildnchill-shop/internal/site/db"
)

type sampleProduct struct {
	name, command, display string
	price                  int64
}

var samples = map[string][]sampleProduct{
	"Rank": {
		{"VIP Rank", "lp user {username} parent add vip", "100K", 100000},
		{"MVP Rank", "lp user {username} parent add mvp", "200K", 200000},
	},
	"Key": {
		{"Vote Key x5", "crate key give {username} vote 5", "20K", 20000},
		{"Legend Key", "crate key give {username} legend 1", "50K", 50000},
	},
}

func main() {
	quiet := flag.Bool("quiet", false, "discard log output")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	var log *logger.Logger
	if *quiet {
		log = logger.NewWriterLogger(io.Discard)
	} else {
		log = logger.NewLogger("seed")
		defer log.Close()
	}

	if err := run(context.Background(), cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	log.Info("SEED", "✅ Sample data inserted")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	bunDB, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer bunDB.Close()

	if err := database.Prepare(ctx, bunDB, cfg.Database.Driver); err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}
	if err := database.SeedSingletons(ctx, bunDB, cfg.Site); err != nil {
		return err
	}

	shop := catalog.NewService(&catalogdb.DB{Bun: bunDB}, nil, nil, log)
	existing, err := shop.ListCategories(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("SEED", fmt.Sprintf("%d categories already present, skipping catalog", len(existing)))
	} else {
		order := 0
		for _, name := range []string{"Rank", "Key"} {
			order++
			category, err := shop.CreateCategory(ctx, models.Category{Name: name, DisplayOrder: order, Active: true})
			if err != nil {
				return err
			}
			for i, p := range samples[name] {
				_, err := shop.CreateProduct(ctx, models.Product{
					Name:         p.name,
					Command:      p.command,
					Price:        p.price,
					DisplayPrice: p.display,
					CategoryID:   category.ID,
					DisplayOrder: i + 1,
					Active:       true,
				}, nil)
				if err != nil {
					return fmt.Errorf("product %s: %w", p.name, err)
				}
			}
		}
	}

	content := site.NewService(&sitedb.DB{Bun: bunDB}, cfg.Site, nil, log)
	_, err = content.CreateNews(ctx, models.NewsRequest{
		Title:       "Chào mừng đến với BuildnChill",
		Description: "Server đã mở cửa trở lại",
		Content:     "Cùng tham gia mùa mới cùng cộng đồng BuildnChill!",
		Date:        time.Now().Format("2006-01-02"),
	})
	return err
}
