package extractor

import (
	"regexp"
	"strings"
)

var (
	pyClass     = regexp.MustCompile(`(?m)^[ \t]*class[ \t]+([A-Za-z_]\w*)[ \t]*(?:\(([^)]*)\))?[ \t]*:`)
	pyFunction  = regexp.MustCompile(`(?m)^(async[ \t]+)?def[ \t]+([A-Za-z_]\w*)[ \t]*` + paramList + `(?:[ \t]*->[ \t]*([^:\n]+))?[ \t]*:`)
	pyMethod    = regexp.MustCompile(`(?m)^[ \t]+(async[ \t]+)?def[ \t]+([A-Za-z_]\w*)[ \t]*` + paramList + `(?:[ \t]*->[ \t]*([^:\n]+))?[ \t]*:`)
	pyDecorator = regexp.MustCompile(`(?m)^[ \t]*@([A-Za-z_][\w.]*)(?:\(([^)\n]*)\))?[ \t]*$`)

	goFunc      = regexp.MustCompile(`(?m)^func[ \t]*(\([^)]*\))?[ \t]*([A-Z]\w*)[ \t]*(\[[^\]]*\])?` + paramList + `[ \t]*([^{\n]*)`)
	goType      = regexp.MustCompile(`(?m)^(?:type[ \t]+|[ \t]+)([A-Z]\w*)(\[[^\]]*\])?[ \t]+(=[ \t]*)?(struct|interface|func|map|chan|\[|\*|[A-Za-z_])`)
	goTypeBlock = regexp.MustCompile(`(?ms)^type[ \t]*\((.*?)^\)`)
	goValue     = regexp.MustCompile(`(?m)^[ \t]+([A-Z]\w*)(?:[ \t]+[\w.*\[\]]+)?[ \t]*(?:=|$)`)
	goValueDecl = regexp.MustCompile(`(?m)^(const|var)[ \t]+([A-Z]\w*)`)
	goBlock     = regexp.MustCompile(`(?ms)^(const|var)[ \t]*\((.*?)^\)`)

	rustFn    = regexp.MustCompile(`(?m)^[ \t]*pub(?:\([^)]*\))?[ \t]+(?:(?:const|async|unsafe|extern[ \t]+"[^"]*")[ \t]+)*fn[ \t]+([A-Za-z_]\w*)[ \t]*(<[^>(]*>)?[ \t]*` + paramList + `(?:[ \t]*->[ \t]*([^{;\n]+?))?[ \t]*(?:\s+where\b[^{]*)?\s*[{;]`)
	rustType  = regexp.MustCompile(`(?m)^[ \t]*pub(?:\([^)]*\))?[ \t]+(?:unsafe[ \t]+)?(struct|enum|trait|type|union)[ \t]+([A-Za-z_]\w*)([ \t]*<[^>{=;(]*>)?`)
	rustMacro = regexp.MustCompile(`(?m)^[ \t]*macro_rules![ \t]*([A-Za-z_]\w*)`)

	javaType   = regexp.MustCompile(`(?m)^[ \t]*public[ \t]+(?:(?:static|final|abstract|sealed)[ \t]+)*(class|interface|enum|record|@interface)[ \t]+([A-Za-z_]\w*)([ \t]*<[^>{]*>)?`)
	javaMethod = regexp.MustCompile(`(?m)^[ \t]+(public|protected)[ \t]+((?:(?:static|final|abstract|synchronized|default|native)[ \t]+)*)(<[^>]+>[ \t]+)?([\w.<>\[\],? ]+?)[ \t]+([A-Za-z_]\w*)[ \t]*` + paramList)

	rubyNamespace = regexp.MustCompile(`(?m)^[ \t]*(class|module)[ \t]+([A-Z][\w:]*)(?:[ \t]*<[ \t]*([A-Z][\w:]*))?`)
	rubyMethod    = regexp.MustCompile(`(?m)^[ \t]*def[ \t]+(self\.)?([a-z_]\w*[?!=]?)(?:[ \t]*\(([^)]*)\)|[ \t]+([^\n#;]+))?`)
	rubyAttribute = regexp.MustCompile(`(?m)^[ \t]*attr_(reader|writer|accessor)[ \t]+(.+)$`)
	rubyPrivate   = regexp.MustCompile(`(?m)^[ \t]*(private|protected)[ \t]*$`)

	phpType     = regexp.MustCompile(`(?m)^[ \t]*(?:(?:abstract|final|readonly)[ \t]+)*(class|interface|trait|enum)[ \t]+([A-Za-z_]\w*)((?:[ \t]+(?:extends|implements)[ \t]+[^{\n]+?)*)[ \t]*(?:\{|$)`)
	phpFunction = regexp.MustCompile(`(?m)^[ \t]*((?:(?:public|protected|private|static|abstract|final)[ \t]+)*)function[ \t]+&?([A-Za-z_]\w*)[ \t]*` + paramList + `(?:[ \t]*:[ \t]*([?\w\\|]+))?`)
)

// pythonBuiltinDecorators carry no API information of their own.
var pythonBuiltinDecorators = map[string]bool{
	"property": true, "staticmethod": true, "classmethod": true, "abstractmethod": true,
	"abc.abstractmethod": true, "override": true, "overload": true, "typing.overload": true,
	"dataclass": true, "dataclasses.dataclass": true, "functools.wraps": true, "wraps": true,
	"pytest.fixture": true, "cached_property": true, "functools.cached_property": true,
}

// pythonClasses captures class declarations with their bases.
func pythonClasses(content string) []Signature {
	var c collector
	for _, idx := range pyClass.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		if strings.HasPrefix(name, "_") {
			continue
		}
		sig := "class " + name
		if bases := collapseSpace(group(content, idx, 2)); bases != "" {
			sig += "(" + bases + ")"
		}
		c.add(name, sig, docstringAfter(content, idx[0]), CategoryClass)
	}
	return c.out
}

// pythonFunctions captures public module-level functions.
func pythonFunctions(content string) []Signature {
	var c collector
	for _, idx := range pyFunction.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 2)
		if strings.HasPrefix(name, "_") {
			continue
		}
		c.add(name, pySignature(content, idx), docstringAfter(content, idx[0]), CategoryFunction)
	}
	return c.out
}

// pythonMethods captures indented defs. Private names are skipped but dunder
// methods such as __init__ are kept.
func pythonMethods(content string) []Signature {
	var c collector
	for _, idx := range pyMethod.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 2)
		dunder := strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
		if strings.HasPrefix(name, "_") && !dunder {
			continue
		}
		c.add(name, pySignature(content, idx), docstringAfter(content, idx[0]), CategoryMethod)
	}
	return c.out
}

func pySignature(content string, idx []int) string {
	sig := "def " + group(content, idx, 2) + "(" + group(content, idx, 3) + ")"
	if group(content, idx, 1) != "" {
		sig = "async " + sig
	}
	if ret := strings.TrimSpace(group(content, idx, 4)); ret != "" {
		sig += " -> " + ret
	}
	return sig
}

// pythonDecorators captures non-builtin decorators, which are frequently the
// public surface of frameworks (routes, fixtures, tasks).
func pythonDecorators(content string) []Signature {
	var c collector
	for _, m := range pyDecorator.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if pythonBuiltinDecorators[name] || strings.HasSuffix(name, ".setter") || strings.HasSuffix(name, ".getter") {
			continue
		}
		sig := "@" + name
		if m[2] != "" {
			sig += "(" + m[2] + ")"
		}
		c.add(name, sig, "", CategoryDecorator)
	}
	return c.out
}

// goFunctions captures exported functions and methods.
func goFunctions(content string) []Signature {
	var c collector
	for _, idx := range goFunc.FindAllStringSubmatchIndex(content, -1) {
		recv := group(content, idx, 1)
		name := group(content, idx, 2)
		sig := "func "
		if recv != "" {
			sig += recv + " "
		}
		sig += name + group(content, idx, 3) + "(" + group(content, idx, 4) + ")"
		if results := strings.TrimSpace(group(content, idx, 5)); results != "" {
			sig += " " + results
		}
		category := CategoryFunction
		if recv != "" {
			category = CategoryMethod
		}
		c.add(name, sig, leadingComment(content, idx[0]), category)
	}
	return c.out
}

// goTypes captures exported type declarations, including grouped ones.
func goTypes(content string) []Signature {
	var c collector
	emit := func(src string, idx []int, grouped bool) {
		if grouped {
			// Only the first indentation level names types; deeper lines are fields.
			indent := src[idx[0] : idx[0]+indentOf(src[idx[0]:idx[1]])]
			if indent != "\t" && (strings.Contains(indent, "\t") || len(indent) > 4) {
				return
			}
		} else if !strings.HasPrefix(src[idx[0]:], "type") {
			return
		}
		name := group(src, idx, 1)
		kind := group(src, idx, 4)
		category := CategoryType
		switch kind {
		case "struct":
			category = CategoryStruct
		case "interface":
			category = CategoryInterface
		}
		sig := "type " + name + group(src, idx, 2)
		if kind == "struct" || kind == "interface" {
			sig += " " + kind
		}
		c.add(name, sig, leadingComment(src, idx[0]), category)
	}

	for _, idx := range goType.FindAllStringSubmatchIndex(content, -1) {
		emit(content, idx, false)
	}
	for _, block := range goTypeBlock.FindAllStringSubmatch(content, -1) {
		body := "\n" + block[1]
		for _, idx := range goType.FindAllStringSubmatchIndex(body, -1) {
			emit(body, idx, true)
		}
	}
	return c.out
}

// goValues captures exported constants and variables.
func goValues(content string) []Signature {
	var c collector
	for _, idx := range goValueDecl.FindAllStringSubmatchIndex(content, -1) {
		kind := group(content, idx, 1)
		name := group(content, idx, 2)
		c.add(name, kind+" "+name, leadingComment(content, idx[0]), valueCategory(kind))
	}
	for _, block := range goBlock.FindAllStringSubmatch(content, -1) {
		kind := block[1]
		body := "\n" + block[2]
		for _, idx := range goValue.FindAllStringSubmatchIndex(body, -1) {
			name := group(body, idx, 1)
			c.add(name, kind+" "+name, leadingComment(body, idx[0]), valueCategory(kind))
		}
	}
	return c.out
}

func valueCategory(kind string) Category {
	if kind == "const" {
		return CategoryConstant
	}
	return CategoryProperty
}

// rustFunctions captures pub fn items, free and associated.
func rustFunctions(content string) []Signature {
	var c collector
	for _, idx := range rustFn.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		sig := "fn " + name + group(content, idx, 2) + "(" + group(content, idx, 3) + ")"
		if ret := strings.TrimSpace(group(content, idx, 4)); ret != "" {
			sig += " -> " + ret
		}
		category := CategoryFunction
		if strings.Contains(group(content, idx, 3), "self") {
			category = CategoryMethod
		}
		c.add(name, sig, leadingComment(content, idx[0]), category)
	}
	return c.out
}

var rustTypeCategories = map[string]Category{
	"struct": CategoryStruct,
	"enum":   CategoryEnum,
	"trait":  CategoryTrait,
	"type":   CategoryType,
	"union":  CategoryStruct,
}

// rustTypes captures pub struct, enum, trait, type and union items.
func rustTypes(content string) []Signature {
	var c collector
	for _, idx := range rustType.FindAllStringSubmatchIndex(content, -1) {
		keyword := group(content, idx, 1)
		name := group(content, idx, 2)
		sig := keyword + " " + name + strings.TrimSpace(group(content, idx, 3))
		c.add(name, sig, leadingComment(content, idx[0]), rustTypeCategories[keyword])
	}
	return c.out
}

// rustMacros captures macro_rules! definitions as "name!".
func rustMacros(content string) []Signature {
	var c collector
	for _, idx := range rustMacro.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, idx, 1)
		c.add(name, name+"!", leadingComment(content, idx[0]), CategoryMacro)
	}
	return c.out
}

var javaTypeCategories = map[string]Category{
	"class":      CategoryClass,
	"record":     CategoryClass,
	"interface":  CategoryInterface,
	"@interface": CategoryInterface,
	"enum":       CategoryEnum,
}

func javaTypes(content string) []Signature {
	var c collector
	for _, idx := range javaType.FindAllStringSubmatchIndex(content, -1) {
		keyword := group(content, idx, 1)
		name := group(content, idx, 2)
		sig := keyword + " " + name + strings.TrimSpace(group(content, idx, 3))
		c.add(name, sig, leadingComment(content, idx[0]), javaTypeCategories[keyword])
	}
	return c.out
}

// javaMethods captures public and protected members, constructors excluded.
func javaMethods(content string) []Signature {
	var c collector
	for _, idx := range javaMethod.FindAllStringSubmatchIndex(content, -1) {
		ret := strings.TrimSpace(group(content, idx, 4))
		name := group(content, idx, 5)
		if controlKeywords[name] || ret == "new" || ret == "return" {
			continue
		}
		sig := ret + " " + name + "(" + group(content, idx, 6) + ")"
		if generic := strings.TrimSpace(group(content, idx, 3)); generic != "" {
			sig = generic + " " + sig
		}
		if strings.Contains(group(content, idx, 2), "static") {
			sig = "static " + sig
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryMethod)
	}
	return c.out
}

func rubyNamespaces(content string) []Signature {
	var c collector
	for _, idx := range rubyNamespace.FindAllStringSubmatchIndex(content, -1) {
		keyword := group(content, idx, 1)
		name := group(content, idx, 2)
		sig := keyword + " " + name
		if parent := group(content, idx, 3); parent != "" {
			sig += " < " + parent
		}
		category := CategoryClass
		if keyword == "module" {
			category = CategoryModule
		}
		c.add(name, sig, leadingComment(content, idx[0]), category)
	}
	return c.out
}

// rubyMethods captures def statements that appear before any bare
// private/protected marker in the file.
func rubyMethods(content string) []Signature {
	limit := len(content)
	if loc := rubyPrivate.FindStringIndex(content); loc != nil {
		limit = loc[0]
	}

	var c collector
	for _, idx := range rubyMethod.FindAllStringSubmatchIndex(content[:limit], -1) {
		name := group(content, idx, 2)
		if strings.HasPrefix(name, "_") {
			continue
		}
		params := group(content, idx, 3)
		if bare := strings.TrimSpace(group(content, idx, 4)); bare != "" {
			params = bare
		}
		sig := "def " + group(content, idx, 1) + name
		if params != "" {
			sig += "(" + params + ")"
		}
		c.add(name, sig, leadingComment(content, idx[0]), CategoryMethod)
	}
	return c.out
}

func rubyAttributes(content string) []Signature {
	var c collector
	for _, idx := range rubyAttribute.FindAllStringSubmatchIndex(content, -1) {
		kind := group(content, idx, 1)
		for _, raw := range strings.Split(group(content, idx, 2), ",") {
			name := strings.Trim(strings.TrimSpace(raw), ":'\"")
			if name == "" || strings.ContainsAny(name, " #") {
				continue
			}
			c.add(name, "attr_"+kind+" :"+name, leadingComment(content, idx[0]), CategoryProperty)
		}
	}
	return c.out
}

var phpTypeCategories = map[string]Category{
	"class":     CategoryClass,
	"interface": CategoryInterface,
	"trait":     CategoryTrait,
	"enum":      CategoryEnum,
}

func phpTypes(content string) []Signature {
	var c collector
	for _, idx := range phpType.FindAllStringSubmatchIndex(content, -1) {
		keyword := group(content, idx, 1)
		name := group(content, idx, 2)
		sig := keyword + " " + name
		if rest := collapseSpace(group(content, idx, 3)); rest != "" {
			sig += " " + rest
		}
		c.add(name, sig, leadingComment(content, idx[0]), phpTypeCategories[keyword])
	}
	return c.out
}

// phpFunctions captures free functions and public methods.
func phpFunctions(content string) []Signature {
	var c collector
	for _, idx := range phpFunction.FindAllStringSubmatchIndex(content, -1) {
		modifiers := group(content, idx, 1)
		name := group(content, idx, 2)
		if strings.Contains(modifiers, "private") || strings.Contains(modifiers, "protected") {
			continue
		}
		if strings.HasPrefix(name, "__") && name != "__construct" {
			continue
		}
		sig := "function " + name + "(" + group(content, idx, 3) + ")"
		if ret := group(content, idx, 4); ret != "" {
			sig += ": " + ret
		}
		if strings.Contains(modifiers, "static") {
			sig = "static " + sig
		}
		category := CategoryFunction
		if modifiers != "" || indentOf(content[idx[0]:idx[1]]) > 0 {
			category = CategoryMethod
		}
		c.add(name, sig, leadingComment(content, idx[0]), category)
	}
	return c.out
}
