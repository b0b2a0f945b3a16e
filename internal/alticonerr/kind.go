package alticonerr

import (
	"errors"
)

// Kind classifies an error by the stage and artifact that produced it
// so that it can be reported to the operator verbatim.
type Kind string

const (
	KindUnknown            Kind = "Unknown"
	KindInputValidation    Kind = "InputValidationError"
	KindNoSourceImages     Kind = "NoSourceImages"
	KindMissingSourceEntry Kind = "MissingSourceEntry"
	KindSourceFileMissing  Kind = "SourceFileMissing"
	KindDecode             Kind = "DecodeError"
	KindResample           Kind = "ResampleError"
	KindEncode             Kind = "EncodeError"
	KindMetadataParse      Kind = "MetadataParseError"
	KindMetadataWrite      Kind = "MetadataWriteError"
	KindBuildFileRead      Kind = "BuildFileReadError"
	KindBuildFileWrite     Kind = "BuildFileWriteError"
	KindFilesystem         Kind = "FilesystemError"
)

func (k Kind) String() string {
	return string(k)
}

func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}

	if kind == "" {
		kind = KindUnknown
	}

	return &kindError{
		err:  err,
		kind: kind,
	}
}

type kindError struct {
	err  error
	kind Kind
}

func (e *kindError) Error() string {
	if e.err == nil {
		return ""
	}

	return e.err.Error()
}

func (e *kindError) Unwrap() error {
	return e.err
}

// KindOf returns the Kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	kerr := &kindError{}
	if errors.As(err, &kerr) {
		return kerr.kind
	}

	return KindUnknown
}

// Is reports whether err's chain carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
