package mpool

// NewListHead returns a new, empty sentinel list head.
func NewListHead() *Block {
	h := &Block{}
	h.reset(BlockTypeHead)
	return h
}

// Front returns the first node attached to list, or nil if list is
// empty.
func Front(list *Block) *Block {
	if list.next == list {
		return nil
	}
	return list.next
}

// InsertAfter splices node in immediately after list (which may be a
// head sentinel or any other node already attached to a list).
func InsertAfter(list, node *Block) {
	node.next = list.next
	node.prev = list
	list.next.prev = node
	list.next = node
}

// InsertBefore splices node in immediately before list.
func InsertBefore(list, node *Block) {
	node.prev = list.prev
	node.next = list
	list.prev.next = node
	list.prev = node
}

// ExtractNode detaches node from whatever list it is in and resets it
// to a self-referencing, unattached link of the same type.
func ExtractNode(node *Block) {
	node.next.prev = node.prev
	node.prev.next = node.next
	node.reset(node.Type)
}

// MergeList splices every node currently in src onto the end of dest,
// leaving src empty. Both must be head sentinels.
func MergeList(dest, src *Block) {
	if src.next == src {
		return
	}
	last := src.prev
	src.next.prev = dest.prev
	dest.prev.next = src.next
	last.next = dest
	dest.prev = last
	src.reset(src.Type)
}

// ForEach calls fn for every node attached to list, in order. If
// alwaysRemove is true, each node is extracted from list before fn
// runs, so fn may safely re-insert it elsewhere (including back onto
// list). Returns the number of nodes visited.
func ForEach(list *Block, alwaysRemove bool, fn func(*Block)) int {
	count := 0
	node := list.next
	for node != list {
		next := node.next
		if alwaysRemove {
			ExtractNode(node)
		}
		fn(node)
		count++
		node = next
	}
	return count
}

// Walk calls fn for every node attached to list, in order, without
// detaching them. fn must not mutate list's own structure.
func Walk(list *Block, fn func(*Block)) {
	for node := list.next; node != list; node = node.next {
		fn(node)
	}
}

// Len counts the nodes attached to list without removing them.
func Len(list *Block) int {
	n := 0
	for node := list.next; node != list; node = node.next {
		n++
	}
	return n
}
