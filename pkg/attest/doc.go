// Package attest defines the attestation service collaborator: the Client
// capability set (create schema, get schema, create attestation), its request
// and result types, and decorators that wrap any Client. Concrete clients live
// in the remote (HTTP) and memory (in-process) subpackages.
package attest
