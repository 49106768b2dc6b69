// Package core provides the ingestion pipeline for delimited-text uploads.
//
// The package holds all domain logic independent of the HTTP layer. Web
// handlers, tests and any future CLI drive it through [Service].
//
// # Pipeline
//
// An upload moves through these stages, each a plain function that can be
// used on its own:
//
//  1. [Parser] splits text into a [RawTable] (header row plus ragged rows)
//  2. [ValidateStructure] checks headers against a schema.FieldConfig
//  3. [ValidateTypes] checks every non-empty cell against its declared type
//  4. [ApplyMapping] renames and coerces columns when the caller sends a mapping
//  5. [Transformer] builds one of the fixed domain record shapes
//
// Only a structural failure stops the pipeline early. Type errors are all
// collected and reported together; the transformed preview is still returned
// but the full data set is withheld.
//
// # Coercion
//
// Validation and mapping share one set of parsers ([ParseNumber],
// [ParseCurrency], [ParseDate]) but differ on failure: validation reports an
// error per cell, mapping and transformation substitute a default. Currency is
// rendered as "$" plus two decimals using exact decimal arithmetic, so
// "$1,234.56" becomes "$1234.56" and rendering is idempotent.
//
// # Persistence
//
// [Service.Import] hands each batch to a [Persister]. Implementations live in
// the store package; core never touches a database directly.
//
// # Error Handling
//
// Request-level failures are sentinel errors ([ErrFileTooLarge],
// [ErrUnknownDataType], ...) mapped to user-facing messages by [MapError].
// Data problems are never errors; they travel in [ValidationResult].
package core
