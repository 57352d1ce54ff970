package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jafarshop/procurement/internal/bootstrap"
	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/procurement"
	"github.com/jafarshop/procurement/pkg/errors"
)

func main() {
	logout := flag.Bool("logout", false, "clear the stored session and exit")
	register := flag.String("register", "", "create the account with this role (admin or staff) before logging in")
	flag.Usage = func() {
		fmt.Println("Usage: go run cmd/login/main.go <username> <password>")
		fmt.Println("       go run cmd/login/main.go -register staff <username> <password>")
		fmt.Println("       go run cmd/login/main.go -logout")
	}
	flag.Parse()

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

	if *logout {
		if err := sessions.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Logged out")
		return
	}

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}
	username, password := flag.Arg(0), flag.Arg(1)

	// Login requests go out without a token
	client := procurement.NewClient(cfg.API, nil, logger)

	if *register != "" {
		user, err := client.Register(ctx, procurement.RegisterRequest{
			Username: username,
			Password: password,
			Role:     *register,
		})
		if err != nil {
			apiErr := errors.Classify(err)
			console.Error(locale.MsgErrorTitle, apiErr.Message, apiErr.Detail)
			os.Exit(1)
		}
		logger.Info("User registered", zap.String("username", user.Username), zap.String("role", user.Role))
	}

	resp, err := client.Login(ctx, username, password)
	if err != nil {
		apiErr := errors.Classify(err)
		console.Error(locale.MsgErrorTitle, apiErr.Message, apiErr.Detail)
		os.Exit(1)
	}

	if err := sessions.SaveToken(ctx, resp.Token); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
		os.Exit(1)
	}
	if resp.User != nil {
		if err := sessions.SaveUser(ctx, *resp.User); err != nil {
			logger.Warn("Failed to save user profile", zap.Error(err))
		}
	}

	console.Success(locale.MsgSuccessTitle, locale.MsgLoginSuccess)
	if resp.User != nil {
		fmt.Printf("User: %s (%s)\n", resp.User.Username, resp.User.Role)
	}
}
