package domain

import "strings"

type ReferenceKind int

const (
	ReferenceSymbolic ReferenceKind = iota
	ReferenceRemoteURL
	ReferenceLocalPath
)

// Reference is a classified artifact reference. Target is the mapped local
// path for symbolic references and the raw reference otherwise.
type Reference struct {
	Kind   ReferenceKind
	Raw    string
	Target string
}

// ClassifyReference decides how a user-supplied reference should be resolved:
// a symbolic-table match wins, then a remote URL scheme, then a literal local
// path. The function is pure; resolution side effects live in the resolver.
func ClassifyReference(raw string, symbols map[string]string) Reference {
	if mapped, ok := symbols[raw]; ok {
		return Reference{Kind: ReferenceSymbolic, Raw: raw, Target: mapped}
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return Reference{Kind: ReferenceRemoteURL, Raw: raw, Target: raw}
	}
	return Reference{Kind: ReferenceLocalPath, Raw: raw, Target: raw}
}
