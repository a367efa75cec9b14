// Command shop is a terminal storefront: browse the catalogue, keep a cart and
// check out against the decor-store API.
//
// Usage:
//
//	shop [-api URL] [-state DIR] <command> [args]
//
// Commands:
//
//	products [-type T] [-room R] [-color HEX] [-search S] [-bestseller] [-new]
//	product <id>
//	cart add <productId> [quantity] [variantId]
//	cart list | cart update <productId> <quantity> | cart remove <productId> | cart clear
//	register <username> <password> [email]
//	login <username> <password>
//	logout
//	whoami
//	checkout
//	order <id>
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"decor-store/internal/cart"
	"decor-store/internal/client"

	"github.com/rs/zerolog"
)

const (
	defaultAPI = "http://localhost:5000"
	cookieFile = "cookies.json"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("shop", flag.ContinueOnError)
	fs.SetOutput(stderr)
	api := fs.String("api", envOr("DECOR_API_URL", defaultAPI), "storefront API base URL")
	stateDir := fs.String("state", os.Getenv("DECOR_STATE_DIR"), "directory for the cart and session files")
	verbose := fs.Bool("v", false, "log API calls")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Usage: shop [flags] <products|product|cart|register|login|logout|whoami|checkout|order> [args]")
		fs.PrintDefaults()
		return errUsage
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	a, err := newApp(*api, *stateDir, stdin, stdout, logger)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

// app holds what every command needs.
type app struct {
	api    *client.Client
	cart   *cart.Store
	in     *bufio.Scanner
	out    io.Writer
	logger zerolog.Logger
}

func newApp(apiURL, stateDir string, in io.Reader, out io.Writer, logger zerolog.Logger) (*app, error) {
	if stateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		stateDir = filepath.Join(dir, "decor-store")
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	api, err := client.New(apiURL,
		client.WithCookieFile(filepath.Join(stateDir, cookieFile)),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	persist, err := cart.NewFilePersistence(filepath.Join(stateDir, cart.DefaultFile))
	if err != nil {
		return nil, err
	}

	a := &app{
		api:    api,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
	a.cart = cart.New(persist, cart.NotifierFunc(a.notify), logger)
	return a, nil
}

func (a *app) notify(title, message string) {
	fmt.Fprintf(a.out, "» %s: %s\n", title, message)
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "products":
		return a.products(ctx, args)
	case "product":
		return a.product(ctx, args)
	case "cart":
		return a.cartCmd(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "order":
		return a.order(ctx, args)
	case "checkout":
		return a.checkout(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
