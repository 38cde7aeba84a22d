// Package types defines the shared data model of the Tripo3D client SDK:
// task snapshots, account balance, request payloads, and the structured
// error type used across every package.
//
// All types here are plain value carriers. A Task is a read-only snapshot
// returned per query; the SDK never mutates one, it re-fetches.
package types
