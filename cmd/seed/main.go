package main

import (
	"context"
	"flag"
	"log"
	"os"

	"sitetree/internal/config"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/pagetypes"
	"sitetree/internal/repository/postgres"
	postgresSitetree "sitetree/internal/repository/postgres/sitetree"
	serviceSitetree "sitetree/internal/service/sitetree"

	"github.com/joho/godotenv"
)

// seedPage is one page of the sample site; children are created below it
type seedPage struct {
	className string
	title     string
	hidden    bool
	draftOnly bool
	children  []seedPage
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop page tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed pages")
	clearData := flag.Bool("clear-data", false, "Remove all pages from both stages (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg, os.Stdout)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Info("dropping page tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready", "pages_table", tables.Pages, "pages_live_table", tables.PagesLive)

	if *schemaOnly {
		return
	}

	if err := postgres.ClearData(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		logger.Info("data cleared")
		return
	}

	registry, err := pagetypes.NewRegistry()
	if cfg.PageTypesFile != "" {
		registry, err = pagetypes.LoadFile(cfg.PageTypesFile)
	}
	if err != nil {
		log.Fatalf("Failed to load page types: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	pageRepo := postgresSitetree.NewPageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	pageService := serviceSitetree.NewPageService(pageRepo, txManager, registry, logger)

	seeder := &seeder{ctx: ctx, pages: pageService, types: registry}
	for i, p := range sampleSite() {
		if err := seeder.create(p, nil, i); err != nil {
			log.Fatalf("Failed to seed %q: %v", p.title, err)
		}
	}

	logger.Info("seeding complete", "pages", seeder.created, "published", seeder.published)
}

type seeder struct {
	ctx       context.Context
	pages     sitetreeSvc.PageService
	types     *pagetypes.Registry
	created   int
	published int
}

// create inserts p under parentID, publishes it when its type is versioned,
// then recurses into its children
func (s *seeder) create(p seedPage, parentID *string, sort int) error {
	show := !p.hidden
	page, err := s.pages.CreatePage(s.ctx, &sitetreeSvc.CreatePageRequest{
		ParentID:    parentID,
		ClassName:   p.className,
		Title:       p.title,
		ShowInMenus: &show,
		Sort:        sort,
	})
	if err != nil {
		return err
	}
	s.created++

	if !p.draftOnly && s.types.SupportsVersioning(p.className) {
		if _, err := s.pages.PublishPage(s.ctx, page.ID); err != nil {
			return err
		}
		s.published++
	}

	for i, child := range p.children {
		if err := s.create(child, &page.ID, i); err != nil {
			return err
		}
	}
	return nil
}

func sampleSite() []seedPage {
	return []seedPage{
		{className: "Page", title: "Home"},
		{className: "Page", title: "About Us", children: []seedPage{
			{className: "Page", title: "Team"},
			{className: "Page", title: "Careers", draftOnly: true},
		}},
		{className: "BlogHolder", title: "Blog", children: []seedPage{
			{className: "Page", title: "Blog Archive"},
			{className: "BlogEntry", title: "Hello World"},
			{className: "BlogEntry", title: "Release Notes"},
			{className: "BlogEntry", title: "Upcoming Post", draftOnly: true},
		}},
		{className: "GalleryHolder", title: "Gallery", children: []seedPage{
			{className: "GalleryImage", title: "Sunset"},
			{className: "GalleryImage", title: "Harbour"},
		}},
		{className: "NewsletterArchive", title: "Newsletters"},
		{className: "ErrorPage", title: "Page Not Found", hidden: true},
		{className: "RedirectorPage", title: "Old Contact", hidden: true},
		{className: "Folder", title: "Assets"},
	}
}
