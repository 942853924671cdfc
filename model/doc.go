// Package model defines the shared vocabulary of the traffic core: the closed
// set of worker roles contending for resources, the resource kinds they
// contend for, vehicles, and the fixed-shape messages exchanged over the
// event pipeline.
package model
