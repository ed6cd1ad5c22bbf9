/*
Package tree projects a live object graph onto a lazily populated tree of nodes.

Each Node wraps one value of the graph. Its children are computed on first
access by one of two policies:

  - Nested expands mappings into entries, sequences into elements and other
    objects into their attributes.
  - PackageView shows the registered collections of a package and the elements
    of containers, and materializes snapshot collections as live views.

Nodes never own the graph. Rebinding a node to a new value discards its
materialized children, which are rebuilt on the next access. A discarded node
reports Attached() == false, so recorded edits can detect that their target
is gone.

Nodes are not safe for concurrent use.
*/
package tree
