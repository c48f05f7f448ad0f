// Package changeset encodes and decodes the before/after field values of
// audited entity mutations.
//
// # Overview
//
// A change tracker observing an entity mutation produces three parallel
// sequences: the changed field names, the old values, and the new values.
// Encode turns the old and new sides into two opaque, self-describing JSON
// text blobs that the persistence layer stores verbatim and later hands back
// unchanged. The package never talks to storage itself.
//
// # Encoding strategy
//
// Most audited mutations touch only a field or two. At or below three fields
// Encode writes the pairs directly into a text buffer, skipping the
// intermediate keyed map entirely; above three it builds the map and lets the
// generic encoder amortize. Both paths produce interchangeable blobs; the
// split only moves allocations. EncodePathCounts exposes which path served a
// workload.
//
// # Decoding
//
// DecodeField streams through a blob and stops at the named field, returning
// its value without materializing the whole record. Absence - an empty blob,
// or a field the mutation never touched - is a normal outcome reported as
// present=false, not an error. DecodeAll is the compatibility path for
// callers that need every field at once.
//
// A blob that fails to parse is a different matter: blobs are only ever
// produced by Encode, so a DecodeError means the stored audit record is
// corrupt. Callers must propagate it.
//
// # Records
//
// Record is the audit-trail entity the codec serves: entity name, primary
// key, changed field names, and the two blobs. NewRecord populates one from
// the change tracker's triples; FieldChange answers "what did this field go
// from and to" via the streaming decoder.
//
// # Cached decoding
//
// CachedDecoder puts a content-addressed read-through cache (sturdyc) in
// front of DecodeAll for audit-view workloads that render the same records
// repeatedly. Blobs are immutable once written, so cached decoded forms can
// never go stale; entries still carry a TTL so cold records age out.
package changeset
