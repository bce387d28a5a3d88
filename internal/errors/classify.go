package errors

import (
	stderrors "errors"

	"github.com/vango-dev/tabdeck/pkg/arena"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/reconcile"
)

// Classify converts a library error into a coded error. Errors that are
// already coded are returned unchanged; anything unrecognised gets
// fallback as its code.
func Classify(err error, fallback string) *TabdeckError {
	if err == nil {
		return nil
	}
	var te *TabdeckError
	if stderrors.As(err, &te) {
		return te
	}

	code := fallback
	switch {
	case stderrors.Is(err, reactive.ErrCyclicDependency):
		code = "E001"
	case stderrors.Is(err, reconcile.ErrDuplicateKey):
		code = "E002"
	case stderrors.Is(err, arena.ErrKeyNotFound):
		code = "E003"
	case stderrors.Is(err, documents.ErrUnsupportedType):
		code = "E201"
	case stderrors.Is(err, documents.ErrFileExists):
		code = "E202"
	case stderrors.Is(err, documents.ErrInvalidName):
		code = "E204"
	}
	return New(code).Wrap(err)
}
