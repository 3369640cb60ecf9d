// Package errors provides the structured error type returned by the glTF loader.
//
// Every error carries a Kind (what went wrong) and, where it applies, the entity
// path that produced it: the document array ("nodes", "accessors"), the position
// inside that array and the field being decoded or resolved.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.KindReference).
//		Entity("nodes", 3).
//		Field("children").
//		Value(12).
//		Detail("index 12 out of bounds for nodes (length 4)").
//		Build()
//
// Or the convenience constructors for the common shapes:
//
//	err := errors.Reference("nodes", 3, "children", "nodes", 12, 4)
//	err := errors.Format("chunk length %d overruns container", n)
//
// Errors compare by kind with the standard library, so callers can test
// errors.Is(err, errors.ErrReference) without caring about the details.
package errors
