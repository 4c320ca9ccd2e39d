package access

import "errors"

var (
	// ErrNoSuchAttribute reports that an attribute is not declared anywhere a
	// static lookup can see, or that a live read found nothing.
	ErrNoSuchAttribute = errors.New("no such attribute")

	// ErrNotALiteral reports a value outside the safe literal kinds.
	ErrNotALiteral = errors.New("not a safe literal")

	// ErrSignatureUnsupported reports that the host cannot, or must not be
	// trusted to, describe a callable's parameters.
	ErrSignatureUnsupported = errors.New("signature unsupported")
)
