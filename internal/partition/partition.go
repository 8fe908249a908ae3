// Package partition implements the PartitionInfoProvider capability: fixed
// local drive enumeration with filesystem name and SSD/HDD classification.
package partition

// RootSize is the length of a drive-root prefix string ("C:\"), used by
// the cache to extract a file's root for routing.
const RootSize = 3
