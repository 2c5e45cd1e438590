// Package types holds the small, dependency-free value types shared by every
// index: file and definition identifiers, the closed set of definition kinds,
// and the postings/call-site records that the content and definition indexes
// serialize. Keeping these as plain structs with u32 indices (rather than
// pointers) is what makes every index freely serializable and safe to mutate
// under a single lock (see DESIGN.md).
package types

// FileID indexes into a ContentIndex's path sequence.
type FileID uint32

// DefID indexes into a DefinitionIndex's definitions sequence.
type DefID uint32

// CommitID indexes into a GitHistoryCache's commits sequence.
type CommitID uint32

// Kind is the closed set of definition kinds extracted from a syntax tree.
type Kind string

const (
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindRecord      Kind = "record"
	KindMethod      Kind = "method"
	KindConstructor Kind = "constructor"
	KindProperty    Kind = "property"
	KindField       Kind = "field"
	KindDelegate    Kind = "delegate"
	KindEvent       Kind = "event"
	KindEnumMember  Kind = "enum_member"
	KindTypeAlias   Kind = "type_alias"
	KindFunction    Kind = "function"
	KindVariable    Kind = "variable"
)

// kindPriority orders kinds for tie-breaking in search_definitions results:
// classes and interfaces first, then other type declarations, callables,
// events and data members; type aliases and variables come last.
var kindPriority = map[Kind]int{
	KindClass:       0,
	KindInterface:   0,
	KindStruct:      1,
	KindEnum:        1,
	KindRecord:      1,
	KindMethod:      2,
	KindConstructor: 2,
	KindFunction:    3,
	KindDelegate:    3,
	KindEvent:       4,
	KindProperty:    5,
	KindField:       5,
	KindEnumMember:  5,
	KindTypeAlias:   6,
	KindVariable:    7,
}

// KindPriority returns the tie-break rank for a kind; unknown kinds sort last.
func KindPriority(k Kind) int {
	if p, ok := kindPriority[k]; ok {
		return p
	}
	return 100
}
