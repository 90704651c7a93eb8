// Package bitbucket provides a typed client for the Bitbucket Cloud REST API.
//
// Both API generations are reachable through one Client: 2.0 for almost
// everything and the legacy 1.0 API for the few user endpoints that only
// exist there. Each generation has its own base URL and its own Codec, which
// maps Go field names such as FullName to the remote full_name.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := bitbucket.NewClient(logger,
//		bitbucket.WithAuthenticator(auth.NewBasic("user", "app-password")),
//		bitbucket.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	me, err := client.Users.Current(ctx)
//
// # Pagination
//
// Collections come back as a Paginator, which fetches one page at a time and
// follows the server's "next" links untouched:
//
//	repos := client.Repositories.List("atlassian", nil, bitbucket.PageOptions{MaxItems: 120})
//	for repo, err := range repos.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(repo.FullName)
//	}
//
// # Errors
//
// Every non-2xx response is an *APIError carrying the server's message
// verbatim. Network failures are *TransportError, unreadable 2xx bodies are
// *DeserializationError, and credential failures are
// *auth.AuthenticationError. errors.Is(err, ErrNotFound) and
// errors.Is(err, ErrUnauthorized) match on status.
package bitbucket
