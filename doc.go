// Package traffix is a deadlock-avoiding resource coordinator with an
// asynchronous billing pipeline for a simulated traffic system.
//
// Concurrent roles (light controller, vehicle spawner, speed monitor, fault
// injector, portal, challan issuer, payment simulator) share scarce lane and
// roster resources. Grants go through a banker-style safety ledger: a
// request is committed tentatively, validated with a safety scan and rolled
// back when committing it could lead to deadlock. A denial is an ordinary
// outcome and callers poll again later.
//
// Detected speed violations flow through bounded, acknowledged topic queues:
// the monitor publishes violation reports, the challan issuer turns them
// into fine records (idempotently, with per-category amounts and a due
// period), the payment simulator settles issued challans, and settled
// records can be archived to any afs-addressable store.
package traffix
