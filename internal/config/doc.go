// Package config loads agedcare-docs settings.
//
// Values come, lowest precedence first, from built-in defaults, an optional YAML config
// file (agedcare-docs.yaml in the working directory, or the file given with --config) and
// AGEDCARE_* environment variables, where nested keys use "_" for "." (for example
// AGEDCARE_SEARCH_PROVIDER). A .env file in the working directory is loaded into the
// environment first. SEARCH_API_KEY is accepted as well as AGEDCARE_SEARCH_API_KEY.
package config
