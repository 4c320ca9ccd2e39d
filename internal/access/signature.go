package access

import (
	"errors"
	"fmt"
	"strings"

	"objscope/internal/object"
)

type emptyMarker struct{}

func (emptyMarker) Class() *object.Class { return nil }

// Empty marks a parameter without a default or without an annotation. It is
// never equal to any host value.
var Empty object.Object = emptyMarker{}

// SignatureParam is one declared parameter of a callable.
type SignatureParam struct {
	Name       string
	Kind       object.ParamKind
	Default    object.Object // Empty if none
	Annotation object.Object // Empty if none
}

// HasDefault reports whether the parameter declares a default.
func (p SignatureParam) HasDefault() bool { return p.Default != Empty }

// HasAnnotation reports whether the parameter declares an annotation.
func (p SignatureParam) HasAnnotation() bool { return p.Annotation != Empty }

// SignatureParams lists the parameters of a callable value in declaration
// order. Versions without signature introspection, the inherited-signature
// quirk, and callables the host cannot describe all fail with
// ErrSignatureUnsupported. Non-callables fail with the host's type error.
func (a *Access) SignatureParams() ([]SignatureParam, error) {
	rt := a.s.rt
	if err := checkSignatureQuirks(rt, a.obj); err != nil {
		return nil, err
	}
	ps, err := object.Signature(rt, a.obj)
	if err != nil {
		if errors.Is(err, object.ErrValue) {
			return nil, fmt.Errorf("%w: %w", ErrSignatureUnsupported, err)
		}
		return nil, err
	}
	out := make([]SignatureParam, len(ps))
	for i, p := range ps {
		sp := SignatureParam{Name: p.Name, Kind: p.Kind, Default: Empty, Annotation: Empty}
		if p.Default != nil {
			sp.Default = p.Default
		}
		if p.Annotation != nil {
			sp.Annotation = p.Annotation
		}
		out[i] = sp
	}
	return out, nil
}

// SignatureString renders the parameter list, e.g. "(a, b=1, *rest)".
func (a *Access) SignatureString() (string, error) {
	ps, err := a.SignatureParams()
	if err != nil {
		return "", err
	}
	return formatSignature(a.s.rt, ps), nil
}

// formatSignature renders parameters the way help() prints them.
func formatSignature(rt *object.Runtime, ps []SignatureParam) string {
	parts := make([]string, 0, len(ps)+1)
	starred := false
	for _, p := range ps {
		var b strings.Builder
		switch p.Kind {
		case object.VarPositional:
			b.WriteString("*")
			starred = true
		case object.VarKeyword:
			b.WriteString("**")
		case object.KeywordOnly:
			if !starred {
				parts = append(parts, "*")
				starred = true
			}
		}
		b.WriteString(p.Name)
		if p.HasAnnotation() {
			if s, ok := p.Annotation.(object.Str); ok {
				b.WriteString(": " + string(s))
			} else if name, ok := object.NameOf(p.Annotation); ok {
				b.WriteString(": " + name)
			}
		}
		if p.HasDefault() {
			sep := "="
			if p.HasAnnotation() {
				sep = " = "
			}
			r, err := object.Repr(rt, p.Default)
			if err != nil {
				r = "..."
			}
			b.WriteString(sep + r)
		}
		parts = append(parts, b.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
