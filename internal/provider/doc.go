// Package provider defines the aged-care records shared across agedcare-docs.
//
// Service-list rows, star-rating rows and provider locations are normalized here, and the
// composite match key ("service - provider - suburb", lowercased and trimmed) is built
// here so that every dataset produces keys the same way.
package provider
