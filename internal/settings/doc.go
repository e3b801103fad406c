// Package settings reads and writes the AutoMV credential file.
//
// The file is a dotenv document inside the AutoMV checkout holding the
// provider selector (ARK_PROVIDER), API credentials, and model identifiers.
// The same values are exported into both pipeline stages' environments.
// Saving merges: blank inputs never clear a stored value.
package settings
