package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
)

var pullStates []string

var pullsCmd = &cobra.Command{
	Use:   "pulls",
	Short: "Work with pull requests",
}

var pullsListCmd = &cobra.Command{
	Use:   "list WORKSPACE/SLUG",
	Short: "List pull requests",
	Args:  cobra.ExactArgs(1),
	RunE:  runPullsList,
}

var pullsDiffCmd = &cobra.Command{
	Use:   "diff WORKSPACE/SLUG ID",
	Short: "Print the diff of a pull request",
	Args:  cobra.ExactArgs(2),
	RunE:  runPullsDiff,
}

func init() {
	addListFlags(pullsListCmd)
	pullsListCmd.Flags().StringSliceVarP(&pullStates, "state", "s", nil, "states to include (OPEN, MERGED, DECLINED, SUPERSEDED)")

	pullsCmd.AddCommand(pullsListCmd, pullsDiffCmd)
	rootCmd.AddCommand(pullsCmd)
}

func runPullsList(cmd *cobra.Command, args []string) error {
	workspace, slug, err := splitRepo(args[0])
	if err != nil {
		return err
	}

	states := make([]string, len(pullStates))
	for i, s := range pullStates {
		states[i] = strings.ToUpper(s)
	}
	opts := &bitbucket.PullRequestListOptions{State: states}

	prs, err := collect(cmd, client.PullRequests.List(workspace, slug, opts, bitbucket.PageOptions{MaxItems: maxItems}))
	if err != nil {
		return fmt.Errorf("failed to list pull requests: %w", err)
	}

	if jsonOutput {
		return printJSON(prs)
	}

	printHeader(len(prs), "pull requests")
	for _, pr := range prs {
		fmt.Printf("• #%d %s [%s]\n", pr.ID, pr.Title, pr.State)
		if pr.Source != nil && pr.Destination != nil {
			fmt.Printf("  %s -> %s\n", pr.Source.Branch.Name, pr.Destination.Branch.Name)
		}
		fmt.Printf("  Author: %s, updated %s\n", displayName(pr.Author), formatDate(pr.UpdatedOn))
	}
	return nil
}

func runPullsDiff(cmd *cobra.Command, args []string) error {
	workspace, slug, err := splitRepo(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	diff, err := client.PullRequests.Diff(cmd.Context(), workspace, slug, id)
	if err != nil {
		return fmt.Errorf("failed to get diff: %w", err)
	}
	fmt.Print(diff)
	return nil
}
