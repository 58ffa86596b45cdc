package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-storefront/app"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/dropdown"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("storefront client failed")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger := newLogger(cfg)
	displayAppname(cfg.AppName)

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("app.New: %w", err)
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.API.Health(ctx); err != nil {
		fmt.Printf("warning: %s\n", cfg.APIBaseURL)
		fmt.Println("         backend is not reachable, commands will report errors")
	}

	printSession(a.Session.Current())
	return repl(ctx, a, cfg)
}

func repl(ctx context.Context, a *app.App, cfg config.Config) error {
	cartPanel := dropdown.New(dropdown.WithCloseDelay(cfg.CloseDelay))
	defer cartPanel.Close()

	unsubscribe := a.Session.Subscribe(func(s session.Snapshot) {
		if s.Status == session.StatusAuthenticated || s.Status == session.StatusAnonymous {
			printSession(s)
		}
	})
	defer unsubscribe()

	fmt.Println("commands: login <email> <password> | register <name> <email> <password> | logout |")
	fmt.Println("          whoami | cart | qty <line> <n> | rm <line> | brands | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			if err := a.Session.Login(ctx, fields[1], fields[2]); err != nil {
				fmt.Printf("login failed: %s\n", a.Session.Current().LastError)
			}
		case "register":
			if len(fields) != 4 {
				fmt.Println("usage: register <name> <email> <password>")
				continue
			}
			if err := a.Session.Register(ctx, fields[1], fields[2], fields[3]); err != nil {
				fmt.Printf("registration failed: %s\n", a.Session.Current().LastError)
			}
		case "logout":
			a.Session.Logout()
		case "whoami":
			printSession(a.Session.Current())
		case "cart":
			// Opening the dropdown triggers the fetch, as hovering the
			// cart icon does in the storefront.
			cartPanel.PointerEnter()
			if err := a.Cart.Refresh(ctx); err != nil {
				fmt.Printf("cart unavailable: %s\n", a.Cart.LastError())
			}
			printCart(a.Cart.Snapshot())
			cartPanel.PointerLeave()
		case "qty":
			if len(fields) != 3 {
				fmt.Println("usage: qty <line> <n>")
				continue
			}
			quantity, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("usage: qty <line> <n>")
				continue
			}
			if err := a.Cart.UpdateQuantity(ctx, fields[1], quantity); err != nil {
				if errors.Is(err, cart.NonPositiveQuantityErr) {
					fmt.Println("quantity must be at least 1, use rm to remove a line")
					continue
				}
				fmt.Printf("update failed: %s\n", a.Cart.LastError())
				continue
			}
			printCart(a.Cart.Snapshot())
		case "rm":
			if len(fields) != 2 {
				fmt.Println("usage: rm <line>")
				continue
			}
			if err := a.Cart.RemoveLine(ctx, fields[1]); err != nil {
				fmt.Printf("removal failed: %s\n", a.Cart.LastError())
				continue
			}
			printCart(a.Cart.Snapshot())
		case "brands":
			if err := a.Brands.Refresh(ctx); err != nil {
				fmt.Printf("brands unavailable: %s\n", a.Brands.LastError())
				continue
			}
			for _, brand := range a.Brands.Brands() {
				fmt.Printf("  %s\n", brand.Name)
			}
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printSession(s session.Snapshot) {
	if s.Authenticated() {
		fmt.Printf("signed in as %s <%s>\n", s.User.Name, s.User.Email)
		return
	}
	fmt.Println("browsing anonymously")
}

func printCart(snapshot cart.Snapshot) {
	if snapshot.Empty() {
		fmt.Println("your cart is empty")
		return
	}
	for _, line := range snapshot.Lines {
		name := line.ProductName
		if line.Variant != nil {
			name = fmt.Sprintf("%s (%s)", name, line.Variant.Name)
		}
		fmt.Printf("  [%s] %s  x%d  %.2f\n", line.ID, name, line.Quantity, line.TotalPrice)
	}
	fmt.Printf("  %d items, total %.2f\n", snapshot.TotalItems(), snapshot.TotalPrice())
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
