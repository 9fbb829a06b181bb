package extractor

import (
	"path"
	"strings"
)

// Kind is the declared content kind of a fetched file.
type Kind string

const (
	KindMarkdown   Kind = "markdown"
	KindRST        Kind = "rst"
	KindTypeScript Kind = "typescript"
	KindJavaScript Kind = "javascript"
	KindPython     Kind = "python"
	KindGo         Kind = "go"
	KindRust       Kind = "rust"
	KindJava       Kind = "java"
	KindRuby       Kind = "ruby"
	KindPHP        Kind = "php"
	KindManifest   Kind = "manifest"
	KindText       Kind = "text"
)

var extensionKinds = map[string]Kind{
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".mdx":      KindMarkdown,
	".rst":      KindRST,
	".ts":       KindTypeScript,
	".tsx":      KindTypeScript,
	".mts":      KindTypeScript,
	".cts":      KindTypeScript,
	".js":       KindJavaScript,
	".jsx":      KindJavaScript,
	".mjs":      KindJavaScript,
	".cjs":      KindJavaScript,
	".py":       KindPython,
	".pyi":      KindPython,
	".go":       KindGo,
	".rs":       KindRust,
	".java":     KindJava,
	".rb":       KindRuby,
	".php":      KindPHP,
}

// KindForPath classifies a repository path by its file name and extension.
func KindForPath(p string) Kind {
	base := path.Base(p)
	lower := strings.ToLower(base)

	if lower == "package.json" {
		return KindManifest
	}
	if strings.HasSuffix(lower, ".d.ts") {
		return KindTypeScript
	}
	if kind, ok := extensionKinds[path.Ext(lower)]; ok {
		return kind
	}
	// Extensionless READMEs are almost always markdown.
	if strings.HasPrefix(lower, "readme") && path.Ext(lower) == "" {
		return KindMarkdown
	}
	return KindText
}

// IsDocumentation reports whether kind is a prose documentation kind.
func (k Kind) IsDocumentation() bool {
	return k == KindMarkdown || k == KindRST
}

// builtinStrategies is the default kind → passes table.
func builtinStrategies() map[Kind][]Pass {
	return map[Kind][]Pass{
		KindMarkdown: {
			pure(markdownInlineCode),
			pure(markdownListLabels),
			pure(markdownTableRows),
			pure(markdownHeadings),
			pure(markdownFencedCalls),
			pure(markdownFencedPaths),
		},
		KindRST: {
			pure(rstDirectives),
			pure(rstInlineCode),
			pure(markdownListLabels),
			pure(rstHeadings),
			pure(rstLiteralCalls),
		},
		KindTypeScript: {
			pure(tsExportedFunctions),
			pure(tsExportedArrowFunctions),
			pure(tsExportedConstants),
			pure(tsClassLikeDeclarations),
			pure(tsTypeAliases),
			pure(tsAnnotatedMembers),
			pure(tsArrowProperties),
		},
		KindJavaScript: {
			pure(jsFunctionDeclarations),
			pure(jsArrowBindings),
			pure(jsClassDeclarations),
			pure(jsMethodShorthand),
			pure(jsCommonJSExports),
		},
		KindPython: {
			pure(pythonClasses),
			pure(pythonFunctions),
			pure(pythonMethods),
			pure(pythonDecorators),
		},
		KindGo: {
			pure(goFunctions),
			pure(goTypes),
			pure(goValues),
		},
		KindRust: {
			pure(rustFunctions),
			pure(rustTypes),
			pure(rustMacros),
		},
		KindJava: {
			pure(javaTypes),
			pure(javaMethods),
		},
		KindRuby: {
			pure(rubyNamespaces),
			pure(rubyMethods),
			pure(rubyAttributes),
		},
		KindPHP: {
			pure(phpTypes),
			pure(phpFunctions),
		},
		KindManifest: {
			manifestExports,
		},
	}
}
