package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket/auth"
	"github.com/s0up4200/bbcloud/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "OAuth2 authorization code helpers",
	Long: `Helpers for the OAuth2 authorization code grant.

Run "bbcloud auth url", open the printed URL, grant access, then pass the code
from the redirect to "bbcloud auth exchange CODE". The resulting tokens can be
stored as auth.access_token and auth.refresh_token with auth.method: token.`,
}

var authURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the consent page URL",
	Args:  cobra.NoArgs,
	RunE:  runAuthURL,
}

var authExchangeCmd = &cobra.Command{
	Use:   "exchange CODE",
	Short: "Exchange an authorization code for tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthExchange,
}

func init() {
	authCmd.AddCommand(authURLCmd, authExchangeCmd)
	rootCmd.AddCommand(authCmd)
}

func codeAuthenticator() (*auth.OAuth2AuthorizationCode, error) {
	a := cfg.Auth
	if a.ConsumerKey == "" || a.ConsumerSecret == "" {
		return nil, fmt.Errorf("auth.consumer_key and auth.consumer_secret are required")
	}
	a.Method = config.AuthAuthorizationCode
	authenticator, err := newAuthenticator(a, newHTTPClient(cfg, logger))
	if err != nil {
		return nil, err
	}
	return authenticator.(*auth.OAuth2AuthorizationCode), nil
}

func runAuthURL(cmd *cobra.Command, args []string) error {
	authenticator, err := codeAuthenticator()
	if err != nil {
		return err
	}

	state := make([]byte, 16)
	if _, err := rand.Read(state); err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	fmt.Println(authenticator.AuthCodeURL(hex.EncodeToString(state)))
	return nil
}

func runAuthExchange(cmd *cobra.Command, args []string) error {
	authenticator, err := codeAuthenticator()
	if err != nil {
		return err
	}

	token, err := authenticator.Exchange(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(token)
	}

	fmt.Printf("access_token:  %s\n", token.AccessToken)
	fmt.Printf("refresh_token: %s\n", token.RefreshToken)
	if !token.Expiry.IsZero() {
		fmt.Printf("expires:       %s\n", token.Expiry.Local().Format("2006-01-02 15:04:05"))
	}
	if len(token.Scopes) > 0 {
		fmt.Printf("scopes:        %v\n", token.Scopes)
	}
	return nil
}
