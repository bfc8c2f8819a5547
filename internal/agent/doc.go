// Package agent wires the tapnode subsystems into one staged boot
// sequence.
//
// Bring-up follows the same order the device firmware uses:
//
//  1. fingerprint — derive the control-page ETag from the build
//  2. store       — load the on-disk configuration store
//  3. led         — open the status LED and force it off
//  4. network     — wait for a routable address (bounded by config)
//  5. announce    — advertise the control server over mDNS
//  6. httpd       — start the control server
//
// Each step registers the release of whatever it acquired with the
// boot sequence's cleanup registry, so a failure at any point tears
// down exactly the subsystems that already came up, newest first. A
// successful boot hands the registry to Run, which holds it until a
// shutdown signal and then unwinds it the same way.
package agent
