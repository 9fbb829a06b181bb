// Package extractor pulls API signatures out of documentation and source text.
//
// Extraction is heuristic: a strategy table maps each content kind to an
// ordered list of independent pattern passes. Every pass sees the full
// content and all passes contribute; results are deduplicated on the exact
// signature string, first occurrence wins.
package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Category classifies an extracted signature.
type Category string

const (
	CategoryFunction  Category = "function"
	CategoryMethod    Category = "method"
	CategoryClass     Category = "class"
	CategoryInterface Category = "interface"
	CategoryType      Category = "type"
	CategoryEnum      Category = "enum"
	CategoryConstant  Category = "constant"
	CategoryProperty  Category = "property"
	CategoryStruct    Category = "struct"
	CategoryTrait     Category = "trait"
	CategoryModule    Category = "module"
	CategoryDecorator Category = "decorator"
	CategoryMacro     Category = "macro"
	CategoryExport    Category = "export"
	CategoryReference Category = "reference"
	CategoryCall      Category = "call"
	CategoryPath      Category = "path"
)

// defaultDescriptions are used when no adjacent prose is found.
var defaultDescriptions = map[Category]string{
	CategoryFunction:  "Function",
	CategoryMethod:    "Method",
	CategoryClass:     "Class definition",
	CategoryInterface: "Interface definition",
	CategoryType:      "Type definition",
	CategoryEnum:      "Enumeration",
	CategoryConstant:  "Exported constant",
	CategoryProperty:  "Property",
	CategoryStruct:    "Struct definition",
	CategoryTrait:     "Trait definition",
	CategoryModule:    "Module",
	CategoryDecorator: "Decorator",
	CategoryMacro:     "Macro",
	CategoryExport:    "Package export",
	CategoryReference: "Documented API",
	CategoryCall:      "Used in documentation examples",
	CategoryPath:      "Referenced path",
}

const (
	minNameLength        = 2
	maxNameLength        = 100
	maxDescriptionLength = 240
)

// Signature is one extracted API entity.
type Signature struct {
	Signature   string   `json:"signature"`
	Description string   `json:"description"`
	Category    Category `json:"category,omitempty"`
}

// Result is the outcome of a single extraction call.
type Result struct {
	Signatures []Signature `json:"signatures"`
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
}

// Pass is one pattern extraction over the full content. Passes are pure.
// A non-nil error means the content could not be interpreted at all.
type Pass func(content string) ([]Signature, error)

// pure adapts an infallible pass.
func pure(fn func(content string) []Signature) Pass {
	return func(content string) ([]Signature, error) {
		return fn(content), nil
	}
}

// Extractor holds a strategy table from kind to passes.
type Extractor struct {
	strategies map[Kind][]Pass
}

// New returns an Extractor with the built-in strategy table.
func New() *Extractor {
	e := &Extractor{strategies: make(map[Kind][]Pass)}
	for kind, passes := range builtinStrategies() {
		e.strategies[kind] = append([]Pass(nil), passes...)
	}
	return e
}

// Register appends passes for kind. Existing kinds keep their passes.
func (e *Extractor) Register(kind Kind, passes ...Pass) {
	e.strategies[kind] = append(e.strategies[kind], passes...)
}

// Kinds returns the number of passes registered per kind.
func (e *Extractor) Kinds() map[Kind]int {
	out := make(map[Kind]int, len(e.strategies))
	for k, p := range e.strategies {
		out[k] = len(p)
	}
	return out
}

// Extract runs every pass registered for kind and deduplicates the output.
// Unknown kinds yield an empty, successful result.
func (e *Extractor) Extract(content string, kind Kind) Result {
	var all []Signature
	for i, pass := range e.strategies[kind] {
		sigs, err := pass(content)
		if err != nil {
			return Result{
				Signatures: []Signature{},
				Success:    false,
				Error:      fmt.Sprintf("%s pass %d: %v", kind, i, err),
			}
		}
		all = append(all, sigs...)
	}
	return Result{Signatures: Dedup(all), Success: true}
}

var defaultExtractor = New()

// Extract runs the built-in strategy table.
func Extract(content string, kind Kind) Result {
	return defaultExtractor.Extract(content, kind)
}

// Dedup keeps the first occurrence of each signature string, preserving order.
func Dedup(sigs []Signature) []Signature {
	seen := make(map[string]bool, len(sigs))
	out := make([]Signature, 0, len(sigs))
	for _, s := range sigs {
		if seen[s.Signature] {
			continue
		}
		seen[s.Signature] = true
		out = append(out, s)
	}
	return out
}

// Merge unions several extraction outputs and re-deduplicates them.
func Merge(sets ...[]Signature) []Signature {
	var all []Signature
	for _, s := range sets {
		all = append(all, s...)
	}
	return Dedup(all)
}

// collector accumulates signatures for a single pass, enforcing name bounds
// and filling default descriptions.
type collector struct {
	out []Signature
}

func (c *collector) add(name, signature, description string, category Category) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < minNameLength || n > maxNameLength {
		return
	}
	signature = collapseSpace(signature)
	if signature == "" {
		return
	}
	description = clip(collapseSpace(description), maxDescriptionLength)
	if description == "" {
		description = defaultDescriptions[category]
	}
	c.out = append(c.out, Signature{
		Signature:   signature,
		Description: description,
		Category:    category,
	})
}

// collapseSpace trims s and folds runs of whitespace (including newlines) to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max-3])) + "..."
}
