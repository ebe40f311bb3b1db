// Package refhandle is a generic engine.Handle usable with any engine.Engine
// implementation: it only calls through the Engine interface, so the same
// Handle works unmodified against memengine and pebbleengine.
//
// Real Handle implementations (out of scope for this module, per the
// "external collaborator" boundary) are expected to already know which
// ident backs a namespace, typically via their own back-reference into the
// owning database's metadata. refhandle accepts that lookup as a
// constructor argument instead, closing over a catalog.Catalog.
package refhandle
