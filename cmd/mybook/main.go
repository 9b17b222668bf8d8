// Command mybook is a CLI client for the mybook service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/and161185/mybook/internal/convert"
)

func usage() {
	fmt.Fprintf(os.Stderr, `mybook CLI
Usage:
  mybook -addr URL [-gateway-key KEY] <cmd> [args]

Commands:
  version
  use       -user <uuid> [-subscribed]                  (saves profile)
  purchase  -book <uuid> -point <n> -title <t> -author <a> -category <c> -image <url>
  history
  read      -book <uuid>
  check     -book <uuid>
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands; every call carries the saved profile as gateway identity headers.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	gwKey := flag.String("gateway-key", os.Getenv("GATEWAY_KEY"), "HS256 key to sign X-Gateway-Assertion")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("mybook %s (%s)\n", version, buildDate)

	case "use":
		fs := flag.NewFlagSet("use", flag.ExitOnError)
		user := fs.String("user", "", "user id (uuid)")
		sub := fs.Bool("subscribed", false, "act as a subscriber")
		_ = fs.Parse(flag.Args()[1:])
		if *user == "" {
			fmt.Fprintln(os.Stderr, "need -user")
			os.Exit(1)
		}
		if err := saveProfile(profile{UserID: *user, Subscribed: *sub}); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "purchase":
		fs := flag.NewFlagSet("purchase", flag.ExitOnError)
		book := fs.String("book", "", "book id (uuid)")
		point := fs.Int("point", -1, "list price in points (omitted when < 0)")
		title := fs.String("title", "", "title")
		author := fs.String("author", "", "author name")
		category := fs.String("category", "", "category")
		image := fs.String("image", "", "cover image url")
		_ = fs.Parse(flag.Args()[1:])
		if *book == "" {
			fmt.Fprintln(os.Stderr, "need -book")
			os.Exit(1)
		}

		cli := client(*addr, *gwKey)
		req := convert.PurchaseRequest{
			BookID: *book, Title: *title, AuthorName: *author, Category: *category, ImageURL: *image,
		}
		if *point >= 0 {
			req.Point = point
		}
		out, err := cli.purchase(ctx, req)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "history":
		out, err := client(*addr, *gwKey).history(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "read", "check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		book := fs.String("book", "", "book id (uuid)")
		_ = fs.Parse(flag.Args()[1:])
		if *book == "" {
			fmt.Fprintln(os.Stderr, "need -book")
			os.Exit(1)
		}

		cli := client(*addr, *gwKey)
		if cmd == "read" {
			out, err := cli.read(ctx, *book)
			if err != nil {
				fail(err)
			}
			printJSON(out)
			return
		}
		ok, err := cli.check(ctx, *book)
		if err != nil {
			fail(err)
		}
		printJSON(convert.CheckResponse{IsPurchased: ok})

	default:
		usage()
	}
}

// ---- utils ----

func client(addr, gwKey string) *apiClient {
	p, err := loadProfile()
	if err != nil {
		fail(err)
	}
	c, err := newAPIClient(addr, p, gwKey)
	if err != nil {
		fail(err)
	}
	return c
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: status=%d code=%s msg=%s\n", ae.Status, ae.Code, ae.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
