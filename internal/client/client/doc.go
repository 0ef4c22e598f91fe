// Package client contains the client-side building blocks that talk to the
// outside world: the remote diary service and the local database bootstrap.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the remote
//     diary service: record list/create/update/enrich/delete, the
//     exists-by-date lookup, analysis, the pairing endpoints and Ping.
//  2. A gRPC implementation (see GRPCClient) that speaks the
//     diary.v1.DiaryService methods with a JSON codec, injects the access
//     token via an interceptor and maps gRPC status codes to the sentinel
//     errors of package common.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Callers match errors with errors.Is against common.ErrNotFound,
// common.ErrUnauthorized and common.ErrUnavailable.
//
// All operations accept context.Context and honor cancellation.
package client
