// Package syntax implements the tagged SQL text protocol.
//
// A SQL fragment may embed entity refs wrapped in two sentinel code points
// (by default U+E000 and U+E001, both in the Unicode private use area).
// Parsing a fragment separates the clean SQL from the set of refs it
// mentions, which is how dependency inference works across the module:
//
//	syn := syntax.New()
//	t, _ := syn.Parse("uuid not null references " + user.String())
//	t.SQL()  // "uuid not null references \"user\""
//	t.Refs() // ["Schema:public|Table:user"]
//
// Formatting runs the other way: ModeSQL drops the tags, ModeTagged
// re-appends them after the clean text so the fragment survives another
// round of parsing. Equality of two fragments considers the clean SQL only.
package syntax
