package driver

import (
	"fmt"
	"runtime"
)

// Kind tags an Error the way spec.md §7 enumerates: System, Buffer,
// Nested, or one of the closed-set Custom kinds.
type Kind string

const (
	KindSystem Kind = "system"
	KindBuffer Kind = "buffer"
	KindNested Kind = "nested"

	KindFlow           Kind = "flow"
	KindFlee           Kind = "flee"
	KindCompile        Kind = "compile"
	KindLink           Kind = "link"
	KindInstall        Kind = "install"
	KindAr             Kind = "ar"
	KindCopy           Kind = "copy"
	KindMdso           Kind = "mdso"
	KindDlltool        Kind = "dlltool"
	KindHostInit       Kind = "host-init"
	KindLdrpathInit    Kind = "ldrpath-init"
	KindLinkFlow       Kind = "link-flow"
	KindNoActionSpec   Kind = "no-action-specified"
	KindNoInputSpec    Kind = "no-input-specified"
	KindDriverMismatch Kind = "driver-mismatch"
	KindOutputNotSpec  Kind = "output-not-specified"
	KindOutputNotApply Kind = "output-not-applicable"
)

// Error is one record in an ErrorVector: a kind, the wrapped cause,
// the call site that appended it, and an optional errno string for
// KindSystem records.
type Error struct {
	Kind  Kind
	Err   error
	Site  string
	Errno string
}

func (e *Error) Error() string {
	if e.Errno != "" {
		return fmt.Sprintf("%s: %s: %v (%s)", e.Site, e.Kind, e.Err, e.Errno)
	}
	return fmt.Sprintf("%s: %s: %v", e.Site, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// ErrorVectorCapacity is the fixed 64-entry ring size spec.md §7
// names ("No record is silently discarded unless the 64-entry vector
// is full").
const ErrorVectorCapacity = 64

// ErrorVector is a bounded, chronological ring of Errors attached to
// a Context (spec's "dynamic error vector with process-wide
// semantics", reworked here as a value owned by the context instead
// of a package-level global).
type ErrorVector struct {
	entries []*Error
	full    bool
}

// Append records err under kind, capturing the caller's site. Once
// the vector holds ErrorVectorCapacity entries, further records are
// dropped and Full reports true.
func (v *ErrorVector) Append(kind Kind, err error) *Error {
	rec := &Error{Kind: kind, Err: err, Site: callSite(1)}
	v.append(rec)
	return rec
}

// AppendSystem records an OS primitive failure, attaching errno's
// string form.
func (v *ErrorVector) AppendSystem(err error) *Error {
	rec := &Error{Kind: KindSystem, Err: err, Site: callSite(1), Errno: err.Error()}
	v.append(rec)
	return rec
}

// AppendNested preserves a downstream record's cause while attaching
// the current call site.
func (v *ErrorVector) AppendNested(err error) *Error {
	rec := &Error{Kind: KindNested, Err: err, Site: callSite(1)}
	v.append(rec)
	return rec
}

func (v *ErrorVector) append(rec *Error) {
	if len(v.entries) >= ErrorVectorCapacity {
		v.full = true
		return
	}
	v.entries = append(v.entries, rec)
}

// Entries returns every recorded Error in chronological order.
func (v *ErrorVector) Entries() []*Error {
	return v.entries
}

// Full reports whether the vector has dropped records due to
// capacity.
func (v *ErrorVector) Full() bool {
	return v.full
}

// Len reports how many records the vector currently holds.
func (v *ErrorVector) Len() int {
	return len(v.entries)
}
