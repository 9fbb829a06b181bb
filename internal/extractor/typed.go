package extractor

import (
	"regexp"
	"strings"
)

var (
	tsFunction  = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:default[ \t]+)?(?:declare[ \t]+)?|declare[ \t]+)(?:async[ \t]+)?function\*?[ \t]*(` + identifier + `)[ \t]*(<[^>(]*>)?[ \t]*` + paramList + `(?:[ \t]*:[ \t]*([^{;\n]+))?`)
	tsArrow     = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+(?:declare[ \t]+)?(?:const|let|var)[ \t]+(` + identifier + `)[ \t]*(?::[^=\n]+)?=[ \t]*(?:async[ \t]*)?(<[^>(]*>)?[ \t]*` + paramList + `(?:[ \t]*:[ \t]*([^=\n{]+?))?[ \t]*=>`)
	tsConst     = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+(?:declare[ \t]+)?(const|let|var)[ \t]+(` + identifier + `)[ \t]*(?::[ \t]*([^=;\n]+))?(.*)$`)
	tsClass     = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:default[ \t]+)?(?:declare[ \t]+)?|declare[ \t]+)(?:abstract[ \t]+)?(class|interface)[ \t]+(` + identifier + `)([ \t]*<[^>{]*>)?((?:[ \t]+(?:extends|implements)[ \t]+[^{\n]+?)*)[ \t]*\{`)
	tsEnum      = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:declare[ \t]+)?|declare[ \t]+)(?:const[ \t]+)?enum[ \t]+(` + identifier + `)`)
	tsType      = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:declare[ \t]+)?|declare[ \t]+)type[ \t]+(` + identifier + `)([ \t]*<[^=\n]*>)?[ \t]*=[ \t]*([^;\n]*)`)
	tsMember    = regexp.MustCompile(`(?m)^[ \t]+((?:(?:public|protected|private|static|readonly|async|abstract|override|declare|get|set)[ \t]+)*)(` + identifier + `)\??[ \t]*(<[^>(]*>)?[ \t]*` + paramList + `[ \t]*:[ \t]*([^;{\n]+)`)
	tsArrowProp = regexp.MustCompile(`(?m)^[ \t]+(?:readonly[ \t]+)?(` + identifier + `)\??[ \t]*:[ \t]*(` + paramList + `[ \t]*=>[ \t]*[^;,\n]+)`)
)

// tsExportedFunctions captures exported or ambient function declarations.
func tsExportedFunctions(content string) []Signature {
	var c collector
	for _, idx := range tsFunction.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		sig := name + group(content, idx, 2) + "(" + group(content, idx, 3) + ")"
		if ret := strings.TrimSpace(group(content, idx, 4)); ret != "" {
			sig += ": " + ret
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryFunction)
	}
	return c.out
}

// tsExportedArrowFunctions captures `export const name = (args): T =>` bindings.
func tsExportedArrowFunctions(content string) []Signature {
	var c collector
	for _, idx := range tsArrow.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		sig := name + group(content, idx, 2) + "(" + group(content, idx, 3) + ")"
		if ret := strings.TrimSpace(group(content, idx, 4)); ret != "" {
			sig += ": " + ret
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryFunction)
	}
	return c.out
}

// tsExportedConstants captures exported bindings that are not arrow functions.
func tsExportedConstants(content string) []Signature {
	var c collector
	for _, idx := range tsConst.FindAllStringSubmatchIndex(content, -1) {
		rest := strings.TrimSpace(group(content, idx, 4))
		if strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "=>") && strings.Contains(rest, "=>") {
			continue
		}
		name := group(content, idx, 2)
		sig := group(content, idx, 1) + " " + name
		if typ := strings.TrimSpace(group(content, idx, 3)); typ != "" {
			sig += ": " + typ
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryConstant)
	}
	return c.out
}

// tsClassLikeDeclarations captures classes, interfaces and enums.
func tsClassLikeDeclarations(content string) []Signature {
	var c collector
	for _, idx := range tsClass.FindAllStringSubmatchIndex(content, -1) {
		keyword := group(content, idx, 1)
		name := group(content, idx, 2)
		sig := keyword + " " + name + strings.TrimSpace(group(content, idx, 3)) + group(content, idx, 4)
		category := CategoryClass
		if keyword == "interface" {
			category = CategoryInterface
		}
		c.add(name, sig, leadingComment(content, idx[0]), category)
	}
	for _, idx := range tsEnum.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		c.add(name, "enum "+name, leadingComment(content, idx[0]), CategoryEnum)
	}
	return c.out
}

// tsTypeAliases captures `type Name<T> = ...` declarations.
func tsTypeAliases(content string) []Signature {
	var c collector
	for _, idx := range tsType.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		sig := "type " + name + strings.TrimSpace(group(content, idx, 2))
		if rhs := clip(strings.TrimSpace(group(content, idx, 3)), 120); rhs != "" {
			sig += " = " + rhs
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryType)
	}
	return c.out
}

// tsAnnotatedMembers captures indented member signatures with an explicit return type.
func tsAnnotatedMembers(content string) []Signature {
	var c collector
	for _, idx := range tsMember.FindAllStringSubmatchIndex(content, -1) {
		modifiers := group(content, idx, 1)
		name := group(content, idx, 2)
		if strings.Contains(modifiers, "private") || strings.HasPrefix(name, "_") || controlKeywords[name] {
			continue
		}
		sig := name + group(content, idx, 3) + "(" + group(content, idx, 4) + "): " + strings.TrimSpace(group(content, idx, 5))
		if strings.Contains(modifiers, "static") {
			sig = "static " + sig
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryMethod)
	}
	return c.out
}

// tsArrowProperties captures function-typed properties such as `onChange: (v: T) => void`.
func tsArrowProperties(content string) []Signature {
	var c collector
	for _, idx := range tsArrowProp.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		if strings.HasPrefix(name, "_") {
			continue
		}
		sig := name + ": " + strings.TrimSpace(group(content, idx, 2))
		c.add(name, sig, leadingComment(content, idx[0]), CategoryProperty)
	}
	return c.out
}

// group returns submatch n from an index slice, or "" when it did not participate.
func group(content string, idx []int, n int) string {
	if 2*n+1 >= len(idx) || idx[2*n] < 0 {
		return ""
	}
	return content[idx[2*n]:idx[2*n+1]]
}
