package storage

import "fmt"

// FilenameEncoding selects how DirStorage maps an entity id to a
// filesystem-safe filename stem, and back.
type FilenameEncoding int

const (
	// EncodingDirect uses the id as the filename stem and restricts it
	// to ASCII alphanumerics, '-' and '_'. Anything else is rejected so
	// an id can never escape the storage directory or collide with the
	// temp-file namespace.
	EncodingDirect FilenameEncoding = iota

	// EncodingURL is reserved for percent-encoded filenames.
	EncodingURL

	// EncodingBase64 is reserved for base64-encoded filenames.
	EncodingBase64
)

// String returns the encoding name for logs and error messages.
func (e FilenameEncoding) String() string {
	switch e {
	case EncodingDirect:
		return "direct"
	case EncodingURL:
		return "url"
	case EncodingBase64:
		return "base64"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// FilenameEncodingError reports an id that could not be encoded to, or
// decoded from, a filename.
type FilenameEncodingError struct {
	ID     string
	Reason string
}

func (e *FilenameEncodingError) Error() string {
	return fmt.Sprintf("cannot encode id %q as a filename: %s", e.ID, e.Reason)
}

// encodeID maps an entity id to a filename stem.
func (e FilenameEncoding) encodeID(id string) (string, error) {
	switch e {
	case EncodingDirect:
		if id == "" {
			return "", &FilenameEncodingError{ID: id, Reason: "id must not be empty"}
		}
		for _, r := range id {
			if !directSafe(r) {
				return "", &FilenameEncodingError{
					ID:     id,
					Reason: "direct encoding allows only alphanumerics, '-' and '_'",
				}
			}
		}
		return id, nil
	case EncodingURL, EncodingBase64:
		return "", &FilenameEncodingError{
			ID:     id,
			Reason: fmt.Sprintf("%s encoding is not implemented", e),
		}
	default:
		return "", &FilenameEncodingError{
			ID:     id,
			Reason: fmt.Sprintf("unknown encoding %s", e),
		}
	}
}

// decodeID maps a filename stem back to the entity id.
func (e FilenameEncoding) decodeID(stem string) (string, error) {
	switch e {
	case EncodingDirect:
		return stem, nil
	case EncodingURL, EncodingBase64:
		return "", &FilenameEncodingError{
			ID:     stem,
			Reason: fmt.Sprintf("%s encoding is not implemented", e),
		}
	default:
		return "", &FilenameEncodingError{
			ID:     stem,
			Reason: fmt.Sprintf("unknown encoding %s", e),
		}
	}
}

func directSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
