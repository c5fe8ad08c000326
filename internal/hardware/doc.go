// Package hardware abstracts the GPIO character device behind a small
// fallible Driver interface.
//
// Two backends exist: GPIO, which drives real lines through
// go-gpiocdev, and Null, which reports ErrUnsupported so deployments
// and tests without physical hardware degrade to store-only mode.
// Input watching is event-driven: edge transitions are pushed onto a
// bounded channel consumed outside request handling, so hardware
// timing never couples to request concurrency.
package hardware
