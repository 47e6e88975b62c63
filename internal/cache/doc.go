// Package cache keeps recently read blocks of catalog files in memory.
//
// Catalog files never change once written, so a block is identified by its
// file name and block number alone and is never invalidated; it only leaves
// the cache through LRU eviction. Caches may be given a resource.Controller,
// in which case every cached byte is charged against its memory budget and
// blocks that do not fit are simply not cached.
package cache
