// Package geo provides a client for the Nominatim geocoding API, which turns
// free-text addresses into candidate locations with coordinates.
package geo
