// Package httpd implements the tapnode control server.
//
// The server exposes the same surface the device firmware exposes over
// its embedded HTTP server:
//
//   - GET  /              — embedded control page, with ETag revalidation
//   - GET  /index.html    — 307 redirect to /
//   - POST /api/led/on    — switch the status LED on
//   - POST /api/led/off   — switch the status LED off
//   - GET  /api/status    — agent status as JSON
//   - GET  /api/events    — WebSocket stream of LED state changes
//
// The control page is embedded in the binary and served with an ETag
// derived from the build fingerprint, so browsers revalidate with a
// cheap 304 after an agent update. LED state changes made through any
// handler are fanned out to every connected /api/events client.
//
// Start binds the listener synchronously and serves in the background;
// a bind failure is therefore reported to the boot step that starts
// the server, while Stop is what the step registers with the cleanup
// registry.
package httpd
