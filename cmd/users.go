package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Look up accounts",
}

var usersFollowersCmd = &cobra.Command{
	Use:   "followers ACCOUNT",
	Short: "List the followers of an account (1.0 API)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersFollowers,
}

func init() {
	usersCmd.AddCommand(usersFollowersCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersFollowers(cmd *cobra.Command, args []string) error {
	followers, err := client.UsersV1.Followers(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get followers: %w", err)
	}

	if jsonOutput {
		return printJSON(followers)
	}

	printHeader(followers.Count, "followers")
	for _, f := range followers.Followers {
		fmt.Printf("• %s (%s)\n", f.DisplayName, f.Username)
	}
	return nil
}
