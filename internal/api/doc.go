// Package api implements the small slice of the GoFile HTTP API that the
// download engine consumes.
//
// This package handles:
//   - Parsing share URLs of the form .../d/<id>
//   - Guest account creation to obtain a session token
//   - Content lookups that describe one file or folder node
//
// A session is single-use: one token is acquired per run and passed by
// value to every downstream call. There is no refresh or retry; a failed
// token exchange or lookup is fatal to the whole session.
//
// # Usage
//
//	target, err := api.ParseShareURL("https://gofile.io/d/AbC123", password)
//
//	client := api.NewClient(api.Options{})
//	cred, err := client.CreateAccount(ctx)
//	content, err := client.Content(ctx, target.ContentID, cred, target.PasswordHash())
package api
