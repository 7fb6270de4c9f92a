package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidPieceType, "unknown piece type %q", "9x9"), `INVALID_PIECE_TYPE: unknown piece type "9x9"`},
		{New(ErrCodeBuildNotFound, "build %q not found", "castle"), `BUILD_NOT_FOUND: build "castle" not found`},
		{Wrap(ErrCodeFileNotFound, fs.ErrNotExist, "config file %s not found", "a.toml"), "FILE_NOT_FOUND: config file a.toml not found: file does not exist"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeStorage, fs.ErrPermission, "save build %s", "castle")
	if err.Message != "save build castle" {
		t.Errorf("Message = %q, want %q", err.Message, "save build castle")
	}
	if errors.Unwrap(err) != fs.ErrPermission {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), fs.ErrPermission)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is(err, fs.ErrPermission) = false, want true")
	}
}

func TestIsAndGetCode(t *testing.T) {
	schema := errors.New("jsonschema: missing properties: 'color'")
	tests := []struct {
		name string
		err  error
		code Code
		is   Code
		want bool
	}{
		{"import rejection", Wrap(ErrCodeInvalidBuild, schema, "build does not match schema"), ErrCodeInvalidBuild, ErrCodeInvalidBuild, true},
		{"other code", New(ErrCodeInvalidColor, "unknown colour"), ErrCodeInvalidColor, ErrCodeInvalidBuild, false},
		// The outermost code wins: a corrupt stored build surfaces as a
		// storage failure, not as an import rejection.
		{"nested", Wrap(ErrCodeStorage, New(ErrCodeInvalidBuild, "corrupt"), "get build castle"), ErrCodeStorage, ErrCodeInvalidBuild, false},
		{"behind fmt wrap", wrapf(New(ErrCodePieceNotFound, "no piece a")), ErrCodePieceNotFound, ErrCodePieceNotFound, true},
		{"plain", errors.New("plain"), "", ErrCodeInternal, false},
		{"nil", nil, "", ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := Is(tt.err, tt.is); got != tt.want {
				t.Errorf("Is(%s) = %v, want %v", tt.is, got, tt.want)
			}
		})
	}
}

type annotated struct{ err error }

func (a annotated) Error() string { return "session: " + a.err.Error() }
func (a annotated) Unwrap() error { return a.err }

func wrapf(err error) error { return annotated{err} }

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Wrap(ErrCodeInvalidBuild, errors.New("unexpected EOF"), "malformed JSON"), "malformed JSON"},
		{wrapf(New(ErrCodeInvalidName, "build name %q contains a path separator", "a/b")), `build name "a/b" contains a path separator`},
		{errors.New("listen tcp :8080: address already in use"), "listen tcp :8080: address already in use"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid build", New(ErrCodeInvalidBuild, "not an array"), true},
		{"missing file", New(ErrCodeFileNotFound, "castle.json"), true},
		{"wrapped invalid color", Wrap(ErrCodeInvalidColor, errors.New("bad"), "color"), true},
		{"missing piece", New(ErrCodePieceNotFound, "a"), true},
		{"storage", New(ErrCodeStorage, "redis down"), false},
		{"unsupported", New(ErrCodeUnsupported, "no library"), false},
		{"internal", New(ErrCodeInternal, "boom"), false},
		{"plain error", errors.New("plain"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.want {
				t.Errorf("IsRecoverable() = %v, want %v", got, tt.want)
			}
		})
	}
}
