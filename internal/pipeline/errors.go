package pipeline

import "errors"

// Error kinds per §7's taxonomy. ProcessQuery returns no error value: an
// error Result carries the text of the kind (or of an error wrapping it) in
// Result.ErrorKind. The orchestrator itself produces ErrRetrievalFailure
// and ErrFatal.
var (
	ErrInputRefusal         = errors.New("pipeline: input refusal")
	ErrClassificationFailure = errors.New("pipeline: classification failure")
	ErrSQLGenerationFailure = errors.New("pipeline: sql generation failure")
	ErrRetrievalFailure     = errors.New("pipeline: retrieval failure")
	ErrLLMResponseFailure   = errors.New("pipeline: llm response failure")
	ErrVisualizationFailure = errors.New("pipeline: visualization failure")
	ErrFatal                = errors.New("pipeline: fatal error")
)
