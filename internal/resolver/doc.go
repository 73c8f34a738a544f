// Package resolver turns a remote share into a flat, ordered list of
// download tasks, mirroring the remote folder structure onto local disk.
//
// Resolution is a strictly sequential depth-first walk. Each folder node
// becomes a local directory (created before its children are visited),
// each file node becomes one Task. Children are visited in the order the
// remote lists them, so the task order and the local layout are
// deterministic for a given share.
//
// The walk accumulates paths explicitly instead of changing the process
// working directory, so nothing here interferes with concurrent work
// elsewhere in the process.
package resolver
