/*
Package aastree is a headless editing model for Asset Administration Shell (AAS) packages.

It projects a deeply nested object graph (shells, submodels, element collections, maps, lists,
sets and cross-document references) into a lazily populated tree of rows and columns, and lets
callers mutate any node in place with type coercion and a bounded undo/redo log.

# Concept

An Editor owns one package view model whose top-level rows are the opened packages. Each
package row exposes its container attributes (shells, assets, submodels, concept descriptions,
supplementary files). Selecting a row and calling Detail yields a nested model over that single
object; its edits mark the package row as changed and its reference cells resolve to rows of
the package view.

All reads and writes go through a model.Model. Role-addressed calls (Data and SetData) mirror the
item-model conventions of desktop toolkits so that a UI, an HTTP API or an MCP agent can drive
the same engine.

# Key Features

  - Lazy projection: children are computed on first access and rebuilt after every mutation.
  - Uniform mutation: one SetValue/Add/Clear path for lists, sets, mappings and attributes.
  - Undo/Redo: every edit records its inverse; compound edits undo as one step.
  - Reference resolution: cells holding a reference jump to the row of the referenced object.
  - Pluggable persistence: JSON, YAML, XML and AASX files, plus memory, file, Redis and SQLite stores.

# Usage

	package main

	import (
		"log"

		"github.com/aretw0/aastree"
		"github.com/aretw0/aastree/pkg/tree"
	)

	func main() {
		ed := aastree.New()
		doc, err := ed.Open("motor.aasx")
		if err != nil {
			log.Fatal(err)
		}

		pm := ed.Model()
		for row := range pm.RowCount(doc) {
			idx := pm.Index(row, tree.ColumnName, doc)
			log.Println(pm.Data(idx, tree.RoleDisplay))
		}

		if err := ed.Save(doc); err != nil {
			log.Fatal(err)
		}
	}
*/
package aastree
