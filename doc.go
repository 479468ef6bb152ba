/*
Package tandem evaluates component documents into virtual DOM trees and keeps
them up to date as files change.

A document is markup with embedded expressions, conditional and iteration
blocks, scoped style blocks, and imports of other documents and stylesheets:

	<import id="card" src="./card.pc" />
	<style>
	  .title { color: red; }
	</style>
	<div class="title">
	  {#each items as item}
	    <card label={item.name} />
	  {/}
	</div>

# Concept

The engine builds a dependency graph of everything a document imports. Loading
a document evaluates it into a tree of elements, text and one aggregated style
element whose rules are scoped per file. Updating a file re-evaluates exactly
the loaded documents that depend on it, in dependency order, and queues one
Evaluated event per document. Element and text ids are derived from the file
and its position, so evaluating the same source twice yields the same ids and
an external reconciler can diff trees.

# Usage

	eng, err := tandem.New("./site", tandem.WithData(map[string]any{"items": items}))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	uri := eng.URI("main.pc")
	if _, err := eng.Load(ctx, uri); err != nil {
		log.Fatal(err)
	}

	// An editor buffer changed.
	if err := eng.UpdateVirtualFileContent(ctx, eng.URI("card.pc"), source); err != nil {
		log.Println(err)
	}
	for _, ev := range eng.DrainEvents() {
		log.Println("re-evaluated", ev.EventURI())
	}
*/
package tandem
