package redolog

//go:generate mockgen -source=interfaces.go -destination=../mocks/redolog_mock.go

// FileDecoder is the narrow surface the CLI's read-redo command depends on.
type FileDecoder interface {
	DecodeFile(path string) (*Decoded, error)
}

// DefaultDecoder is the production FileDecoder backed by the package-level
// DecodeFile function.
type DefaultDecoder struct{}

func (DefaultDecoder) DecodeFile(path string) (*Decoded, error) { return DecodeFile(path) }

var _ FileDecoder = DefaultDecoder{}
