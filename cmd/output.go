package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
	"github.com/s0up4200/bbcloud/config"
	"github.com/s0up4200/bbcloud/filter"
)

var compiler = filter.NewCompiler(filter.WithCache(32))

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&maxItems, "max", "n", 0, "maximum number of items to list (0 for all)")
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or saved filter name")
}

// splitRepo parses WORKSPACE/SLUG
func splitRepo(arg string) (string, string, error) {
	workspace, slug, ok := strings.Cut(arg, "/")
	if !ok || workspace == "" || slug == "" || strings.Contains(slug, "/") {
		return "", "", fmt.Errorf("expected WORKSPACE/SLUG, got %q", arg)
	}
	return workspace, slug, nil
}

// compileFilter resolves a saved filter name or compiles the expression as
// given. An empty expression yields a nil filter.
func compileFilter(expression string, saved config.FilterConfig) (filter.CompiledFilter, error) {
	if expression == "" {
		return nil, nil
	}
	if named, ok := saved[expression]; ok {
		expression = named
	}
	f, err := compiler.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}

// collect drains p and applies the --filter expression
func collect[T any](cmd *cobra.Command, p *bitbucket.Paginator[T]) ([]T, error) {
	f, err := compileFilter(filterExpr, cfg.Filter)
	if err != nil {
		return nil, err
	}

	items, err := p.Collect(cmd.Context())
	if err != nil {
		if len(items) > 0 {
			logger.Warn().Err(err).Int("retrieved", len(items)).Msg("Listing stopped early")
		}
		return nil, err
	}

	logger.Debug().Int("count", len(items)).Int("pages", p.Pages()).Msg("Listing complete")

	if f == nil {
		return items, nil
	}
	return filter.Apply(f, client.Codec(bitbucket.V2), items)
}

// printJSON writes v to stdout using the API's field names
func printJSON(v any) error {
	data, err := client.Codec(bitbucket.V2).Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

func printHeader(count int, noun string) {
	if count == 0 {
		fmt.Printf("No %s found.\n", noun)
		return
	}
	fmt.Printf("\nFound %d %s:\n", count, noun)
	fmt.Println(strings.Repeat("-", 80))
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func displayName(u *bitbucket.User) string {
	if u == nil {
		return "-"
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Nickname
}
