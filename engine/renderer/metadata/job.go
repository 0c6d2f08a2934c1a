package metadata

/**
 * @brief Determines which job queue a job uses. High priority jobs are picked
 * before normal ones whenever both are waiting.
 */
type JobPriority int

const (
	/** @brief A normal-priority job. Should be used for medium-priority tasks such as loading assets. */
	JOB_PRIORITY_NORMAL JobPriority = iota
	/** @brief The highest-priority job. Should be used sparingly, and only for time-critical operations.*/
	JOB_PRIORITY_HIGH
)

/** @brief Entry point of a job. Runs on a worker goroutine. */
type JobStart func() (interface{}, error)

/** @brief Invoked with the entry point's result when it succeeds. */
type JobOnComplete func(result interface{})

/** @brief Invoked with the entry point's error when it fails. */
type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Used in log lines. */
	Name     string
	Priority JobPriority
	/** @brief A function to be invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief A function to be invoked when the job successfully completes. Optional. */
	OnComplete JobOnComplete
	/** @brief A function to be invoked when the job fails. Optional. */
	OnFailure JobOnFailure
}
