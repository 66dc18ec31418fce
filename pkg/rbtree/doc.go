/*
Package rbtree implements a red-black tree keyed by unsigned 63-bit
integers, the index structure pkg/cache uses for its hash, time-bucket,
and destination-EID indices.

Keys are limited to 63 bits because original_source/common/v7_rbtree.c
steals the sign bit of its key field to store the node's color for
memory density; this port keeps color in its own field instead (Go has
no equivalent pressure to pack them together) but keeps the 63-bit key
ceiling so a key computed by shifting or hashing in the C implementation's
style never silently overflows here either.

ExtractNode removes a node by its own identity rather than by
re-searching for its key, using CLRS's RB-DELETE transplant: when the
target has two children, its *successor* is spliced into the target's
structural position (pointers relinked, keys untouched), so the object
the caller held a pointer to is the one actually removed — exactly the
"caller holds a direct pointer from a cache entry" usage spec.md
describes, and not the left-leaning variant's key-copy-then-delete-
successor approach, which would leave the caller's pointer still live
in the tree under a different key.

Tree.Insert supports an always-go-right duplicate-key mode for the two
cache indices (time bucket, destination EID) whose keys are
intentionally non-unique; ordering among equal keys is then
unspecified and such trees must only be walked by range, never probed
by exact key.
*/
package rbtree
