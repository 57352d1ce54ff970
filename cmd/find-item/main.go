package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/procurement/internal/bootstrap"
	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/procurement"
	"github.com/jafarshop/procurement/internal/service"
	"github.com/jafarshop/procurement/pkg/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-item/main.go <name>")
		fmt.Println("Example: go run cmd/find-item/main.go \"kertas\"")
		os.Exit(1)
	}

	query := strings.Join(os.Args[1:], " ")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	printer := locale.NewPrinter(locale.Parse(cfg.Language))
	console := notify.NewConsole(os.Stdout, nil, printer)

	sessions, closeSessions, err := bootstrap.OpenSessionStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer closeSessions()

	if !sessions.HasSession(ctx) {
		console.Error(locale.MsgErrorTitle, locale.MsgSessionExpired, locale.MsgLoginAgain)
		os.Exit(1)
	}

	client := procurement.NewClient(cfg.API, sessions, logger)
	inventory := service.NewInventoryService(client, sessions, printer, logger)

	fmt.Printf("🔍 Searching for item: %s\n\n", query)

	matches, err := inventory.FindItems(ctx, query)
	if err != nil {
		apiErr := errors.Classify(err)
		console.Error(locale.MsgErrorTitle, apiErr.Message, apiErr.Detail)
		os.Exit(1)
	}

	if len(matches) == 0 {
		fmt.Printf("❌ No item matching %q\n", query)
		os.Exit(1)
	}

	for _, m := range matches {
		fmt.Printf("✅ %s\n", m.Item.Name)
		fmt.Printf("   Item ID:  %d\n", m.Item.ID)
		fmt.Printf("   Supplier: %s (ID %d)\n", m.SupplierName, m.Item.SupplierID)
		fmt.Printf("   Price:    %s\n", locale.FormatIDR(printer, m.Item.Price))
		fmt.Printf("   Stock:    %d (%s)\n\n", m.Item.Stock, domain.StockStatusOf(m.Item.Stock))
	}
}
