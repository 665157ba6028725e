// Package models defines the core domain models for Tabshare.
//
// # Models
//
//   - Session: one shared bill with its items, members, and lifecycle state
//   - Member: one anonymous participant, recognized by a per-device fingerprint
//   - Item: a single receipt line
//   - Claim: the join row recording that a member splits an item
//
// There are no user accounts. A participant is identified within one session
// by an opaque fingerprint string the device generates once and persists;
// joining twice from the same device always resolves to the same Member.
//
// # Design Principles
//
// 1. **Anonymous by construction**: identity lives in (session, fingerprint), never globally
// 2. **Avoid circular references**: relationships are ID strings, not pointers
// 3. **Exact money**: amounts are decimal values backed by integer minor units at rest;
// binary floating point never touches settlement arithmetic
package models
