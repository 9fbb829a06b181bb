package extractor

import (
	"regexp"
	"strings"
)

var (
	jsFunction  = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:default[ \t]+)?)?(?:async[ \t]+)?function\*?[ \t]*(` + identifier + `)[ \t]*` + paramList)
	jsArrow     = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+(` + identifier + `)[ \t]*=[ \t]*(?:async[ \t]*)?(?:` + paramList + `|(` + identifier + `))[ \t]*=>`)
	jsClass     = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:default[ \t]+)?)?class[ \t]+(` + identifier + `)(?:[ \t]+extends[ \t]+([\w$.]+))?`)
	jsMethod    = regexp.MustCompile(`(?m)^[ \t]+((?:(?:static|async|get|set)[ \t]+)*)\*?(` + identifier + `)[ \t]*` + paramList + `[ \t]*\{`)
	jsCommonJS  = regexp.MustCompile(`(?m)^[ \t]*(?:module\.)?exports\.(` + identifier + `)[ \t]*=[ \t]*(?:async[ \t]+)?(?:function\*?[ \t]*(?:` + identifier + `)?[ \t]*` + paramList + `)?`)
)

// jsFunctionDeclarations captures `function name(args)` declarations.
func jsFunctionDeclarations(content string) []Signature {
	var c collector
	for _, idx := range jsFunction.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		if strings.HasPrefix(name, "_") {
			continue
		}
		c.add(name, name+"("+group(content, idx, 2)+")", leadingComment(content, idx[0]), CategoryFunction)
	}
	return c.out
}

// jsArrowBindings captures `const name = (args) =>` and `const name = arg =>`.
func jsArrowBindings(content string) []Signature {
	var c collector
	for _, idx := range jsArrow.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		if strings.HasPrefix(name, "_") {
			continue
		}
		params := group(content, idx, 2)
		if single := group(content, idx, 3); single != "" {
			params = single
		}
		c.add(name, name+"("+params+")", leadingComment(content, idx[0]), CategoryFunction)
	}
	return c.out
}

// jsClassDeclarations captures class declarations with an optional base class.
func jsClassDeclarations(content string) []Signature {
	var c collector
	for _, idx := range jsClass.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		sig := "class " + name
		if base := group(content, idx, 2); base != "" {
			sig += " extends " + base
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryClass)
	}
	return c.out
}

// jsMethodShorthand captures object-literal shorthand and class method bodies.
// Control-flow keywords that look like method heads are excluded.
func jsMethodShorthand(content string) []Signature {
	var c collector
	for _, idx := range jsMethod.FindAllStringSubmatchIndex(content, -1) {
		modifiers := group(content, idx, 1)
		name := group(content, idx, 2)
		if controlKeywords[name] || strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#") {
			continue
		}
		sig := name + "(" + group(content, idx, 3) + ")"
		switch {
		case strings.Contains(modifiers, "static"):
			sig = "static " + sig
		case strings.Contains(modifiers, "get"):
			sig = "get " + sig
		case strings.Contains(modifiers, "set"):
			sig = "set " + sig
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryMethod)
	}
	return c.out
}

// jsCommonJSExports captures `exports.name = function(args)` and `module.exports.name = value`.
func jsCommonJSExports(content string) []Signature {
	var c collector
	for _, idx := range jsCommonJS.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		sig := name
		if idx[4] >= 0 {
			sig += "(" + group(content, idx, 2) + ")"
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryExport)
	}
	return c.out
}
