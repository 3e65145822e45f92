// Package meteo provides a client for the Open-Meteo forecast API.
package meteo
