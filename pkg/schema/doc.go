// Package schema models attestation schemas as ordered lists of typed fields
// and provides the Builder used to assemble them interactively. Field order is
// significant: it defines the column order of the registered schema. Names are
// not de-duplicated.
package schema
