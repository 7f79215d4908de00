package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DescriptionPlaceholder replaces a missing candidate description.
	DescriptionPlaceholder = "No description"

	// DefaultMaxUploadBytes bounds uploaded statement size when no policy is configured.
	DefaultMaxUploadBytes = 10 << 20
)

// Pipeline stage names reported to PipelineRecorder.
const (
	StageStore     = "store"
	StageExtract   = "extract"
	StageClassify  = "classify"
	StageNormalize = "normalize"
	StageReconcile = "reconcile"
)
