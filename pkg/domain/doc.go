/*
Package domain contains the object model edited by the tree: Asset Administration
Shell entities, the containers that hold them and the package that owns an object store.

The package is kept pure and free of I/O. Persistence, presentation and the
editing engine live in other packages and only depend on the protocols declared
here.

# Key Entities

  - Package: an opened document with its ObjectStore and supplementary files.
  - ObjectStore: the identifiable objects of a package, indexed by identifier.
  - Shell, Asset, Submodel, ConceptDescription: identifiable AAS objects.
  - Property, Collection, ReferenceElement: submodel elements.
  - Reference: a key chain that resolves to an object in a store.
  - List, Set, Dict: reference-typed containers with position-aware mutation.
*/
package domain
