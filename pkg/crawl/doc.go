// Package crawl resolves, once per connection, everything a metadata
// retriever needs before it issues its first query: whether the connection
// is usable, what the engine supports, and for each metadata category
// whether to ask the engine's native metadata facility or run a custom
// information-schema query.
//
// The resulting RetrieverContext is immutable. It borrows the connection
// and never closes it.
package crawl
