package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/niksmo/price-tracker/config"
	"github.com/niksmo/price-tracker/internal/app"
	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/service"
	"github.com/niksmo/price-tracker/pkg/sigctx"
	"github.com/spf13/pflag"
)

type flags struct {
	search  string
	filter  domain.FilterMode
	sort    domain.SortMode
	history string
}

func main() {
	f := parseFlags()

	sigCtx, cancel := sigctx.NotifyContext()
	defer cancel()

	cfg := config.Load()
	app.InitLogger(cfg.LogLevel)

	cl, err := app.NewBackendClient(cfg)
	if err != nil {
		fallDown("failed to create backend client", err)
	}

	if err := app.WaitBackend(sigCtx, cl, cfg.Backend.WaitAttempts); err != nil {
		slog.Warn("backend is not reachable", "err", err)
	}

	s := service.New(sigCtx, cl, nil, service.Config{
		Locale:   cfg.Lang,
		Location: cfg.Location,
	})
	defer s.Close()

	if err := s.LoadCatalog(sigCtx); err != nil {
		fallDown("failed to load catalog", err)
	}

	if f.history != "" {
		if _, err := s.ToggleProduct(sigCtx, f.history); err != nil {
			fallDown("failed to select product", err)
		}
	}

	v := s.ReadView(domain.ViewState{Search: f.search, Filter: f.filter, Sort: f.sort})
	printView(os.Stdout, v)
}

func parseFlags() flags {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	_ = cmdLine.String("config", "", "config file")
	search := cmdLine.StringP("search", "s", "", "case-insensitive name filter")
	filter := cmdLine.StringP("filter", "f", "all",
		"all, lowest_price, discounted or price_ok")
	sort := cmdLine.StringP("sort", "o", "default",
		"default, discount_desc, price_asc, price_desc or name_asc")
	history := cmdLine.String("history", "", "print the price history of the product id")
	_ = cmdLine.Parse(os.Args[1:])

	fm, err := domain.ParseFilterMode(*filter)
	if err != nil {
		fallDown("invalid --filter", err)
	}
	sm, err := domain.ParseSortMode(*sort)
	if err != nil {
		fallDown("invalid --sort", err)
	}
	return flags{search: *search, filter: fm, sort: sm, history: *history}
}

func printView(w io.Writer, v domain.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tBADGES")
	for _, c := range v.Cards {
		mark := ""
		if c.Selected {
			mark = " *"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\t%s\n",
			c.Product.ID, c.Product.Name, mark, c.CategoryLabel, c.PriceLabel,
			strings.Join(c.Badges, " "))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d/%d products\n", v.Shown, v.Total)

	if !v.Selected.IsSelected() {
		return
	}

	fmt.Fprintf(w, "\nhistory of %s:\n", v.Selected.ProductID)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if v.Series.HasOrdinary {
		fmt.Fprintln(tw, "DATE\tPRICE\tORDINARY")
	} else {
		fmt.Fprintln(tw, "DATE\tPRICE")
	}
	for _, p := range v.Series.Points {
		price := service.PriceLabel(&p.Price)
		if !v.Series.HasOrdinary {
			fmt.Fprintf(tw, "%s\t%s\n", p.Label, price)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Label, price, service.PriceLabel(p.OrdinaryPrice))
	}
	_ = tw.Flush()
}

func fallDown(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(2)
}
