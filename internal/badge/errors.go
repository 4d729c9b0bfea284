package badge

import "fmt"

// Kind classifies why a badge image was rejected.
type Kind int

const (
	WrongDimensions Kind = iota + 1
	PayloadTooLarge
	SignatureMismatch
	MalformedPayload
	MissingField
	UnmatchedID
	NameMismatch
	EmailMismatch
	CourseCodeMismatch
	CourseNameMismatch
	ProgramMismatch
	LevelMismatch
	RefereeMismatch
	NotPNG
)

var kindText = map[Kind]string{
	WrongDimensions:    "image does not have badge dimensions",
	PayloadTooLarge:    "payload exceeds the badge capacity",
	SignatureMismatch:  "payload signature does not match",
	MalformedPayload:   "payload cannot be decoded",
	MissingField:       "payload lacks a required field",
	UnmatchedID:        "no badge with the embedded ID",
	NameMismatch:       "holder name does not match",
	EmailMismatch:      "holder e-mail does not match",
	CourseCodeMismatch: "course code does not match",
	CourseNameMismatch: "course name does not match",
	ProgramMismatch:    "program or relay name does not match",
	LevelMismatch:      "attained level does not match",
	RefereeMismatch:    "referee does not match",
	NotPNG:             "file is not a PNG image",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("badge error %d", int(k))
}

// Error is a rejection of a badge image or payload.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrLevelMismatch)
// ignores the detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrWrongDimensions    = &Error{Kind: WrongDimensions}
	ErrPayloadTooLarge    = &Error{Kind: PayloadTooLarge}
	ErrSignatureMismatch  = &Error{Kind: SignatureMismatch}
	ErrMalformedPayload   = &Error{Kind: MalformedPayload}
	ErrMissingField       = &Error{Kind: MissingField}
	ErrUnmatchedID        = &Error{Kind: UnmatchedID}
	ErrNameMismatch       = &Error{Kind: NameMismatch}
	ErrEmailMismatch      = &Error{Kind: EmailMismatch}
	ErrCourseCodeMismatch = &Error{Kind: CourseCodeMismatch}
	ErrCourseNameMismatch = &Error{Kind: CourseNameMismatch}
	ErrProgramMismatch    = &Error{Kind: ProgramMismatch}
	ErrLevelMismatch      = &Error{Kind: LevelMismatch}
	ErrRefereeMismatch    = &Error{Kind: RefereeMismatch}
	ErrNotPNG             = &Error{Kind: NotPNG}
)

func reject(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
