/*
Package filesystem wraps os.Stat and os.Open with retries for NFS stale file
handle errors (ESTALE).

Studio photos are often picked up straight from a NAS share. When the server
side of the share changes, a handle can go stale between the stat and the
open of a file; retrying after a short backoff almost always succeeds. Every
other error is returned at once.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

Backoff doubles from InitialBackoff up to MaxBackoff. Retries are counted in
sku_renamer_filesystem_retries_total by operation and outcome.
*/
package filesystem
