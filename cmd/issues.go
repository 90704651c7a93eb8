package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Work with the issue tracker",
}

var issuesListCmd = &cobra.Command{
	Use:   "list WORKSPACE/SLUG",
	Short: "List issues",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssuesList,
}

func init() {
	addListFlags(issuesListCmd)
	issuesListCmd.Flags().StringVarP(&query, "query", "q", "", "BBQL query, e.g. 'state=\"new\"'")

	issuesCmd.AddCommand(issuesListCmd)
	rootCmd.AddCommand(issuesCmd)
}

func runIssuesList(cmd *cobra.Command, args []string) error {
	workspace, slug, err := splitRepo(args[0])
	if err != nil {
		return err
	}

	opts := &bitbucket.ListOptions{Query: query}
	issues, err := collect(cmd, client.Issues.List(workspace, slug, opts, bitbucket.PageOptions{MaxItems: maxItems}))
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	if jsonOutput {
		return printJSON(issues)
	}

	printHeader(len(issues), "issues")
	for _, issue := range issues {
		fmt.Printf("• #%d %s [%s/%s/%s]\n", issue.ID, issue.Title, issue.Kind, issue.Priority, issue.State)
		fmt.Printf("  Reporter: %s, assignee: %s\n", displayName(issue.Reporter), displayName(issue.Assignee))
	}
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
