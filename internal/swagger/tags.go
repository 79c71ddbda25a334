package swagger

// @Tag.name Meta
// @Tag.description Operational probes and version metadata.

// @Tag.name Webhooks
// @Tag.description GitHub deliveries, verified per repository secret.

// @Tag.name Stream
// @Tag.description Live commit feeds over Server-Sent Events and WebSocket.

// @Tag.name Listeners
// @Tag.description Listener accounts and token login.

// @Tag.name Repositories
// @Tag.description Repository registration and stored commits.

// @Tag.name Motifs
// @Tag.description Deterministic per-author audio signatures.
