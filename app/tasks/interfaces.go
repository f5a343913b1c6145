package tasks

// DependencySink receives the declared input dependencies of one build
// target. The external build scheduler owns the staleness check; this
// package only supplies the data.
type DependencySink interface {
	Declare(target string, deps []string, uptodate []string)
}

// TaskRunnerInterface runs planned build units on a bounded worker
// pool. Units are independent; a failed unit never aborts the others.
type TaskRunnerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Wait() int
}
