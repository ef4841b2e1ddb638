package symgo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/symbolset"
)

// Example_intern demonstrates table-scoped interning and resolution.
func Example_intern() {
	table := symgo.Table().MustBuild()

	a := table.Intern("tokenize")
	b := table.Intern("tokenize")

	fmt.Println(a == b)
	fmt.Println(table.Resolve(a))
	// Output:
	// true
	// tokenize
}

// Example_lookup demonstrates probing for a symbol without interning.
func Example_lookup() {
	table := symgo.Table().MustBuild()
	table.Intern("present")

	if sym, ok := table.Lookup("present"); ok {
		fmt.Println(table.Resolve(sym))
	}
	_, ok := table.Lookup("absent")
	fmt.Println(ok)
	// Output:
	// present
	// false
}

// Example_globalSymbols demonstrates process-wide interning and the JSON
// wire form, which is the string content rather than the handle bits.
func Example_globalSymbols() {
	kind := symgo.Intern("keyword")

	payload, err := json.Marshal(struct {
		Kind symgo.GlobalSymbol `json:"kind"`
	}{Kind: kind})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(payload))
	fmt.Println(kind.String())
	// Output:
	// {"kind":"keyword"}
	// keyword
}

// Example_lazySymbol demonstrates caching the handle for a fixed string at
// a hot call site.
func Example_lazySymbol() {
	kwReturn := symgo.NewLazySymbol("return")

	tok := symgo.Intern("return")

	fmt.Println(tok == kwReturn.Symbol())
	fmt.Println(kwReturn.String())
	// Output:
	// true
	// return
}

// Example_snapshot demonstrates persisting a table and restoring it with
// identical raw symbol values.
func Example_snapshot() {
	ctx := context.Background()

	table := symgo.Table().MustBuild()
	sym := table.Intern("persisted")

	var buf bytes.Buffer
	if err := table.WriteSnapshot(ctx, &buf); err != nil {
		log.Fatal(err)
	}

	loaded, err := symgo.ReadSnapshot(ctx, &buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(loaded.Resolve(sym))
	fmt.Println(loaded.Intern("persisted") == sym)
	// Output:
	// persisted
	// true
}

// Example_symbolSet demonstrates set algebra over interned symbols.
func Example_symbolSet() {
	table := symgo.Table().MustBuild()

	stopwords := symbolset.Of(table.Intern("the"), table.Intern("a"))
	seen := symbolset.Of(table.Intern("the"), table.Intern("parser"))

	seen.Difference(stopwords)
	for sym := range seen.Iterator() {
		fmt.Println(table.Resolve(sym))
	}
	// Output:
	// parser
}
