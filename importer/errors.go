package importer

import (
	"errors"
	"fmt"
)

// ErrNoSource is returned when a submission has neither an upload nor a URL.
var ErrNoSource = errors.New("an XML file (uploaded file or URL) is required")

// DuplicateMessage is the message of a ContentDuplicateError.
const DuplicateMessage = "Dataset already exists and duplicates are not allowed."

// ContentFetchError reports that a remote document could not be retrieved.
type ContentFetchError struct {
	URL string
	Err error
}

func (e *ContentFetchError) Error() string {
	return fmt.Sprintf("error while getting URL %s: %v", e.URL, e.Err)
}

func (e *ContentFetchError) Unwrap() error { return e.Err }

// ContentImportError reports a parse or persistence failure. Name is the
// dataset name that was being imported, empty when parsing failed.
type ContentImportError struct {
	Name string
	Err  error
}

func (e *ContentImportError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("could not import dataset: %v", e.Err)
	}
	return fmt.Sprintf("could not import dataset %s: %v", e.Name, e.Err)
}

func (e *ContentImportError) Unwrap() error { return e.Err }

// ContentDuplicateError reports that the dataset exists and the policy
// forbids both duplicates and overrides.
type ContentDuplicateError struct {
	Name string
}

func (e *ContentDuplicateError) Error() string {
	return DuplicateMessage
}

// UploadError reports that the dataset was persisted but attaching a
// resource failed. The dataset is not rolled back.
type UploadError struct {
	Resource string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("could not upload file %s: %v", e.Resource, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
