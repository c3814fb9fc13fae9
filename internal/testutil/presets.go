package testutil

import (
	"fmt"

	"github.com/zjrosen/folio/internal/library"
)

// Numbered returns n items titled "Item 000".."Item n-1" with ids
// "i000"..., so title order equals index order.
func Numbered(n int) []library.Item {
	items := make([]library.Item, n)
	for i := range n {
		items[i] = Item(fmt.Sprintf("i%03d", i), fmt.Sprintf("Item %03d", i))
	}
	return items
}

// Shelf is a small mixed library: two Rust books, a Go book and a classic.
// In title order: "Go in Action", "Rust Atomics", "Rust for Rustaceans",
// "The Mythical Man-Month".
func Shelf() []library.Item {
	return []library.Item{
		Item("go", "Go in Action", Authors("William Kennedy"), Year(2015), Tags("go")),
		Item("rust-atomics", "Rust Atomics", Authors("Mara Bos"), Year(2023), Tags("rust", "concurrency"), File("/books/atomics.pdf")),
		Item("rust-rustaceans", "Rust for Rustaceans", Authors("Jon Gjengset"), Year(2021), Tags("rust")),
		Item("mmm", "The Mythical Man-Month", Authors("Fred Brooks"), Year(1975), Status(library.StatusRead), InLibrary("classics")),
	}
}
