// Package ratings joins star ratings onto residential services.
//
// The service list and the star-ratings extract share no identifier, so each service is
// matched to a rating by fuzzy comparison of their composite keys.
package ratings
