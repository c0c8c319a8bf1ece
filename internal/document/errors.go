package document

import "errors"

// Run-level and per-file failure classes. Callers wrap these with context
// and branch with errors.Is.
var (
	// ErrRootNotFound indicates the ingestion root does not exist. It aborts
	// the run before any work begins.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrExistenceCheck indicates the index could not answer whether a
	// document already exists. Fatal to that one file only.
	ErrExistenceCheck = errors.New("existence check failed")

	// ErrExtraction indicates the file could not be read or parsed.
	ErrExtraction = errors.New("extraction failed")

	// ErrIndexWrite indicates the index reported a failed write.
	ErrIndexWrite = errors.New("index write failed")

	// ErrIndexWriteTimeout indicates the write was not committed in time.
	// The document stays unindexed and is retried on the next run.
	ErrIndexWriteTimeout = errors.New("index write timed out")

	// ErrUnsupportedType indicates no extractor handles the file's type.
	ErrUnsupportedType = errors.New("unsupported file type")
)
