package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
)

var listTags bool

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "Work with branches and tags",
}

var branchesListCmd = &cobra.Command{
	Use:   "list WORKSPACE/SLUG",
	Short: "List branches, or tags with --tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranchesList,
}

func init() {
	addListFlags(branchesListCmd)
	branchesListCmd.Flags().BoolVar(&listTags, "tags", false, "list tags instead of branches")

	branchesCmd.AddCommand(branchesListCmd)
	rootCmd.AddCommand(branchesCmd)
}

func runBranchesList(cmd *cobra.Command, args []string) error {
	workspace, slug, err := splitRepo(args[0])
	if err != nil {
		return err
	}

	page := bitbucket.PageOptions{MaxItems: maxItems}
	p, noun := client.Refs.Branches(workspace, slug, nil, page), "branches"
	if listTags {
		p, noun = client.Refs.Tags(workspace, slug, nil, page), "tags"
	}

	refs, err := collect(cmd, p)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", noun, err)
	}

	if jsonOutput {
		return printJSON(refs)
	}

	printHeader(len(refs), noun)
	for _, ref := range refs {
		hash := ""
		if ref.Target != nil && len(ref.Target.Hash) >= 12 {
			hash = ref.Target.Hash[:12]
		}
		fmt.Printf("• %-40s %s\n", ref.Name, hash)
	}
	return nil
}
