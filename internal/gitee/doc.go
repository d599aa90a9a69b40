// Package gitee provides an HTTP client for the Gitee v5 contents API.
//
// A Client is bound to one repository, branch and bookmark file taken from
// Settings. Fetch and Put read and replace that file; the file's sha acts as
// the revision, so Put with a stale sha fails with ErrConflict instead of
// overwriting a concurrent change.
//
// Requests carry the token both as an "Authorization: token" header and, for
// writes, as the access_token body field. All requests use the caller's
// context and return errors wrapped with the HTTP method and path:
//
//	client, err := gitee.NewClient(settings, gitee.WithLogger(log))
//	file, err := client.Fetch(ctx)
//	err = client.Put(ctx, tree, file.Revision)
//
// The client never retries; callers decide whether to refetch and try again.
package gitee
