package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
)

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "Work with Bitbucket Pipelines",
}

var pipelinesListCmd = &cobra.Command{
	Use:   "list WORKSPACE/SLUG",
	Short: "List pipelines, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelinesList,
}

func init() {
	addListFlags(pipelinesListCmd)

	pipelinesCmd.AddCommand(pipelinesListCmd)
	rootCmd.AddCommand(pipelinesCmd)
}

func runPipelinesList(cmd *cobra.Command, args []string) error {
	workspace, slug, err := splitRepo(args[0])
	if err != nil {
		return err
	}

	opts := &bitbucket.ListOptions{Sort: "-created_on"}
	pipelines, err := collect(cmd, client.Pipelines.List(workspace, slug, opts, bitbucket.PageOptions{MaxItems: maxItems}))
	if err != nil {
		return fmt.Errorf("failed to list pipelines: %w", err)
	}

	if jsonOutput {
		return printJSON(pipelines)
	}

	printHeader(len(pipelines), "pipelines")
	for _, p := range pipelines {
		state := "-"
		if p.State != nil {
			state = p.State.Name
			if p.State.Result != nil {
				state += "/" + p.State.Result.Name
			}
		}
		ref := ""
		if p.Target != nil {
			ref = p.Target.RefName
		}
		fmt.Printf("• #%d %s [%s] %s\n", p.BuildNumber, ref, state, formatDate(p.CreatedOn))
	}
	return nil
}
