// Package logging provides the custom dragonboat-style logger used across
// the catalog coordination layer.
//
// It installs a logger.ILogger factory (github.com/lni/dragonboat/v4/logger)
// so every package - whether or not it actually uses dragonboat's raft
// machinery - gets the same leveled, prefixed log output. This mirrors
// rpc/common's dKVLogger, generalized to a package name of the caller's
// choosing instead of dragonboat's fixed subsystem names.
package logging
