package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/bbcloud/bitbucket"
)

// maxConcurrentFetches bounds parallel requests of repos get
const maxConcurrentFetches = 8

var repoRole string

// reposCmd groups repository commands
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Work with repositories",
}

var reposListCmd = &cobra.Command{
	Use:   "list WORKSPACE",
	Short: "List the repositories of a workspace",
	Long: `List the repositories of a workspace.

--query takes a server-side BBQL filter, --filter a client-side expression:

  bbcloud repos list atlassian --query 'language="go"' --filter 'is_private == true'

Filter helpers hasSubstr, hasPrefix and hasSuffix ignore case; the contains,
startsWith and endsWith operators do not:

  bbcloud repos list atlassian --filter 'hasSubstr(full_name, "api")'
  bbcloud repos list atlassian --filter 'lower(name) startsWith "svc-"'`,
	Args: cobra.ExactArgs(1),
	RunE: runReposList,
}

var reposGetCmd = &cobra.Command{
	Use:   "get WORKSPACE/SLUG...",
	Short: "Show one or more repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReposGet,
}

func init() {
	addListFlags(reposListCmd)
	reposListCmd.Flags().StringVarP(&query, "query", "q", "", "BBQL query, e.g. 'name ~ \"api\"'")
	reposListCmd.Flags().StringVar(&repoRole, "role", "", "only repositories where you have this role (member, contributor, admin, owner)")

	reposCmd.AddCommand(reposListCmd, reposGetCmd)
	rootCmd.AddCommand(reposCmd)
}

func runReposList(cmd *cobra.Command, args []string) error {
	opts := &bitbucket.RepositoryListOptions{
		ListOptions: bitbucket.ListOptions{Query: query},
		Role:        repoRole,
	}

	logger.Info().Str("workspace", args[0]).Str("query", query).Msg("Listing repositories")

	repos, err := collect(cmd, client.Repositories.List(args[0], opts, bitbucket.PageOptions{MaxItems: maxItems}))
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	if jsonOutput {
		return printJSON(repos)
	}

	printHeader(len(repos), "repositories")
	for _, repo := range repos {
		printRepository(&repo)
	}
	return nil
}

func runReposGet(cmd *cobra.Command, args []string) error {
	type target struct{ workspace, slug string }
	targets := make([]target, len(args))
	for i, arg := range args {
		workspace, slug, err := splitRepo(arg)
		if err != nil {
			return err
		}
		targets[i] = target{workspace, slug}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxConcurrentFetches)

	repos := make([]*bitbucket.Repository, len(targets))

	for i, t := range targets {
		g.Go(func() error {
			repo, err := client.Repositories.Get(ctx, t.workspace, t.slug)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", t.workspace, t.slug, err)
			}
			repos[i] = repo
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(repos)
	}
	for _, repo := range repos {
		printRepository(repo)
	}
	return nil
}

func printRepository(repo *bitbucket.Repository) {
	visibility := "public"
	if repo.IsPrivate {
		visibility = "private"
	}
	fmt.Printf("• %s [%s]\n", repo.FullName, visibility)
	if repo.Description != "" {
		fmt.Printf("  %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Printf("  Language: %s\n", repo.Language)
	}
	if repo.MainBranch != nil {
		fmt.Printf("  Main branch: %s\n", repo.MainBranch.Name)
	}
	fmt.Printf("  Updated: %s\n", formatDate(repo.UpdatedOn))
}
