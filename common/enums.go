// The only reason this package exists is because the enums are shared by the
// configuration and by the rewriting library, and the library must not depend
// on program configuration.
package common

// Strategy used to derive custom property suffix from icon name.
// ENUM(dashes, slug, template)
type KeyStrategy int

// Where the shared variable rule is created when stylesheet does not have one.
// ENUM(start, end)
type InsertPosition int
