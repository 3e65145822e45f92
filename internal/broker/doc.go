// Package broker implements the long-poll message broker at the core of the
// plausch chat relay: client registration with unique color assignment,
// single-slot message delivery, and broadcast/private routing.
package broker
