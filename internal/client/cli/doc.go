// Package cli provides the interactive diary command-line client.
//
// It loads the access token, opens an account session and runs a REPL
// over it. Saves always land in the local store first; the session pushes
// and pulls in the background whenever the server is reachable.
//
// Key features:
//   - New / Edit / List / Show / Delete diary entries
//   - On-demand analysis (one request at a time)
//   - Manual sync with the server
//   - Aggregator link, unlink and push
//   - Pairing codes and viewer/sharer relationships
//   - Recovery of a draft left behind by an interrupted save
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
