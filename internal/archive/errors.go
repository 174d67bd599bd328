package archive

import "errors"

// Sentinel errors for the custom archive-specific kinds named in
// spec §7. Wrap with fmt.Errorf("%w: detail", ErrX) via fail(), and
// test with errors.Is.
var (
	ErrEmptyFile              = errors.New("empty-file")
	ErrInvalidSignature       = errors.New("invalid-signature")
	ErrInvalidHeader          = errors.New("invalid-header")
	ErrTruncatedData          = errors.New("truncated-data")
	ErrDuplicateLongNames     = errors.New("duplicate-long-names")
	ErrDuplicateArmapMember   = errors.New("duplicate-armap-member")
	ErrMisplacedArmapMember   = errors.New("misplaced-armap-member")
	ErrArmapMismatch          = errors.New("armap-mismatch")
	ErrInvalidArmapNsyms      = errors.New("invalid-armap-nsyms")
	ErrInvalidArmapSizeOfRefs = errors.New("invalid-armap-size-of-refs")
	ErrInvalidArmapSizeOfStrs = errors.New("invalid-armap-size-of-strs")
	ErrInvalidArmapStringTbl = errors.New("invalid-armap-string-table")
	ErrInvalidArmapMemberOff  = errors.New("invalid-armap-member-offset")
	ErrInvalidArmapNameOff    = errors.New("invalid-armap-name-offset")
)
